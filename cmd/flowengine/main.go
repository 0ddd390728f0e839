// Command flowengine is the headless runner binary (spec §6). It wires the
// sample node set into a registry and hands off to the cli package.
package main

import (
	"log/slog"
	"os"

	"github.com/flowengine/flowengine/cli"
	"github.com/flowengine/flowengine/nodes/textutil"
	"github.com/flowengine/flowengine/nodes/ticker"
	"github.com/flowengine/flowengine/registry"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	reg := registry.New(logger)

	mustRegister(reg, registry.TypeDef{
		TypeID: textutil.UpperTypeID, DisplayName: "Uppercase", Category: "text",
		Factory: textutil.NewUpperNode,
	})
	mustRegister(reg, registry.TypeDef{
		TypeID: textutil.FrontmatterTypeID, DisplayName: "Split Frontmatter", Category: "text",
		Factory: textutil.NewFrontmatterNode,
	})
	mustRegister(reg, registry.TypeDef{
		TypeID: ticker.TypeID, DisplayName: "Interval Ticker", Category: "events",
		Factory: ticker.Factory(ticker.Config{}),
	})

	root := cli.NewRootCmd(reg)
	os.Exit(cli.Execute(root))
}

func mustRegister(reg *registry.Registry, def registry.TypeDef) {
	if err := reg.Register(def); err != nil {
		panic(err)
	}
}
