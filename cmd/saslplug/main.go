package main

import (
	"context"

	"gfx.cafe/util/go/gotel"

	saslcmd "gfx.cafe/gfx/saslplug/cmd"
	"gfx.cafe/gfx/saslplug/lib/util/beforeexit"
)

func main() {
	fn, err := gotel.InitTracing(context.Background(), gotel.WithServiceName("saslplug"))
	if err == nil {
		beforeexit.Run(func() {
			_ = fn(context.Background())
		})
	}

	saslcmd.Main()
}
