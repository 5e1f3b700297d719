package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDirectives(t *testing.T) {
	directives, err := ParseDirectives(`realm="a",Realm="b" , nonce="x\"y\\z",qop="auth,auth-int",algorithm=md5-sess, charset = utf-8`)
	require.NoError(t, err)

	require.Equal(t, []string{"a", "b"}, directives["realm"])
	nonce, ok := directives.Get("nonce")
	require.True(t, ok)
	require.Equal(t, `x"y\z`, nonce)
	qop, _ := directives.Get("qop")
	require.Equal(t, "auth,auth-int", qop)
	algorithm, _ := directives.Get("algorithm")
	require.Equal(t, "md5-sess", algorithm)
	charset, _ := directives.Get("charset")
	require.Equal(t, "utf-8", charset)

	_, ok = directives.Get("cipher")
	require.False(t, ok)
}

func TestParseDirectivesErrors(t *testing.T) {
	cases := []string{
		`nonce`,
		`="value"`,
		`nonce="unterminated`,
		`nonce="a"b`,
	}
	for _, c := range cases {
		if _, err := ParseDirectives(c); !errors.Is(err, ErrBadDirectives) {
			t.Errorf("%q: expected bad directives, got %v", c, err)
		}
	}
}

func TestQuoteDirective(t *testing.T) {
	quoted := QuoteDirective(`a"b\c`)
	if quoted != `"a\"b\\c"` {
		t.Errorf("unexpected quoted value %s", quoted)
	}

	directives, err := ParseDirectives("value=" + quoted)
	if err != nil {
		t.Fatal(err)
	}
	if value, _ := directives.Get("value"); value != `a"b\c` {
		t.Errorf("unexpected round trip %q", value)
	}
}

func TestParseDirectivesEmpty(t *testing.T) {
	directives, err := ParseDirectives("")
	require.NoError(t, err)
	require.Empty(t, directives)
}
