package plugin

import (
	"go.uber.org/zap"

	"gfx.cafe/gfx/saslplug/lib/engine"
	"gfx.cafe/gfx/saslplug/lib/sessiondata"
)

var propertyKey = [engine.PropertyCount]string{
	engine.PropertyAuthID:                  sessiondata.KeyUsername,
	engine.PropertyAuthzID:                 sessiondata.KeyAuthzid,
	engine.PropertyPassword:                sessiondata.KeySecret,
	engine.PropertyAnonymousToken:          sessiondata.KeyAnonymousToken,
	engine.PropertyService:                 sessiondata.KeyService,
	engine.PropertyHostname:                sessiondata.KeyHostname,
	engine.PropertyGSSAPIDisplayName:       sessiondata.KeyGssapiDisplayName,
	engine.PropertyPasscode:                sessiondata.KeyPasscode,
	engine.PropertySuggestedPin:            sessiondata.KeySuggestedPin,
	engine.PropertyPin:                     sessiondata.KeyPin,
	engine.PropertyRealm:                   sessiondata.KeyRealm,
	engine.PropertyDigestMD5HashedPassword: sessiondata.KeyDigestMd5HashedPassword,
	engine.PropertyQOPs:                    sessiondata.KeyQops,
	engine.PropertyQOP:                     sessiondata.KeyQop,
	engine.PropertyScramIter:               sessiondata.KeyScramIter,
	engine.PropertyScramSalt:               sessiondata.KeyScramSalt,
	engine.PropertyScramSaltedPassword:     sessiondata.KeyScramSaltedPassword,
	engine.PropertyCBTLSUnique:             sessiondata.KeyCbTlsUnique,
}

// Property resolves a value requested by the engine from the active
// session's data. Nothing is available while idle.
func (T *Plugin) Property(property engine.Property) (string, bool) {
	if T.data == nil || property < 0 || property >= engine.PropertyCount {
		T.log.Debug("property requested without session", zap.Stringer("property", property))
		return "", false
	}

	var value string
	var ok bool
	switch property {
	case engine.PropertyAuthID:
		value, ok = T.data.Username()
	case engine.PropertyPassword:
		value, ok = T.data.Secret()
	default:
		value, ok = T.data.String(propertyKey[property])
	}

	T.log.Debug(
		"property requested",
		zap.Stringer("session", T.id),
		zap.Stringer("property", property),
		zap.Bool("found", ok),
	)
	return value, ok
}

var _ engine.Callback = (*Plugin)(nil)
