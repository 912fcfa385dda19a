// Command icydb is a small demonstration shell around the engine: it
// loads (or creates) a single stable-memory snapshot file on disk, runs
// one CRUD or query operation against the widget fixture entity, saves
// the snapshot back, and exits. Every invocation is its own "canister
// call" — state only persists across runs through the snapshot file,
// the same restart discipline the engine's SaveTo/LoadFrom pair is
// built for.
package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/dragginzgame/icydb-go/engine"
	"github.com/dragginzgame/icydb-go/examples/fixture"
	"github.com/dragginzgame/icydb-go/plan"
	"github.com/dragginzgame/icydb-go/predicate"
	"github.com/dragginzgame/icydb-go/store"
	"github.com/dragginzgame/icydb-go/value"
)

func main() {
	app := &cli.App{
		Name:  "icydb",
		Usage: "drive the embedded widget-entity database from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "snapshot",
				Usage: "path to the stable-memory snapshot file",
				Value: "icydb.snapshot",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug-level logging",
			},
		},
		Commands: []*cli.Command{
			insertCommand,
			getCommand,
			deleteCommand,
			listCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "icydb:", err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	if c.Bool("verbose") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openEngine builds an Engine, registers the widget fixture entity, and
// loads + replays whatever snapshot already exists at path. Callers
// must call closeEngine when done to persist state back out.
func openEngine(c *cli.Context) (*engine.Engine, *store.HostSim, error) {
	log, err := newLogger(c)
	if err != nil {
		return nil, nil, err
	}

	e, err := engine.New(engine.DefaultConfig(), log)
	if err != nil {
		return nil, nil, err
	}
	if err := e.RegisterEntity(fixture.Model(), fixture.Codec()); err != nil {
		return nil, nil, err
	}

	host := store.NewHostSim()
	path := c.String("snapshot")
	if data, err := os.ReadFile(path); err == nil {
		if err := host.ImportBytes(data); err != nil {
			return nil, nil, err
		}
		if err := e.LoadFrom(host); err != nil {
			return nil, nil, err
		}
		if err := e.Recover(); err != nil {
			return nil, nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, nil, err
	}

	return e, host, nil
}

func closeEngine(e *engine.Engine, host *store.HostSim, path string) error {
	if err := e.SaveTo(host); err != nil {
		return err
	}
	data, err := host.ExportBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

var insertCommand = &cli.Command{
	Name:      "insert",
	Usage:     "insert a new widget (fails if the id already exists)",
	ArgsUsage: "<id> <owner> <sku> <price>",
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 4 {
			return cli.Exit("insert requires exactly 4 arguments", 1)
		}
		var id uint64
		if _, err := fmt.Sscanf(c.Args().Get(0), "%d", &id); err != nil {
			return cli.Exit("invalid id: "+c.Args().Get(0), 1)
		}
		price, err := decimal.NewFromString(c.Args().Get(3))
		if err != nil {
			return cli.Exit("invalid price: "+c.Args().Get(3), 1)
		}
		w := fixture.Widget{ID: id, Owner: c.Args().Get(1), SKU: c.Args().Get(2), Price: price}

		e, host, err := openEngine(c)
		if err != nil {
			return err
		}
		if err := e.Insert("widget", value.Uint(w.ID), w.ToFields()); err != nil {
			return err
		}
		return closeEngine(e, host, c.String("snapshot"))
	},
}

var getCommand = &cli.Command{
	Name:      "get",
	Usage:     "fetch one widget by id",
	ArgsUsage: "<id>",
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return cli.Exit("get requires exactly 1 argument", 1)
		}
		var id uint64
		if _, err := fmt.Sscanf(c.Args().Get(0), "%d", &id); err != nil {
			return cli.Exit("invalid id: "+c.Args().Get(0), 1)
		}

		e, host, err := openEngine(c)
		if err != nil {
			return err
		}
		fields, ok, err := e.Get("widget", value.Uint(id))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("not found")
			return closeEngine(e, host, c.String("snapshot"))
		}
		w, err := fixture.FromFields(fields)
		if err != nil {
			return err
		}
		fmt.Printf("%d\t%s\t%s\t%s\n", w.ID, w.Owner, w.SKU, w.Price.String())
		return closeEngine(e, host, c.String("snapshot"))
	},
}

var deleteCommand = &cli.Command{
	Name:      "delete",
	Usage:     "delete one widget by id",
	ArgsUsage: "<id>",
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return cli.Exit("delete requires exactly 1 argument", 1)
		}
		var id uint64
		if _, err := fmt.Sscanf(c.Args().Get(0), "%d", &id); err != nil {
			return cli.Exit("invalid id: "+c.Args().Get(0), 1)
		}

		e, host, err := openEngine(c)
		if err != nil {
			return err
		}
		if err := e.Delete("widget", value.Uint(id)); err != nil {
			return err
		}
		return closeEngine(e, host, c.String("snapshot"))
	},
}

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "list widgets belonging to an owner, newest id first",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "owner", Required: true},
		&cli.IntFlag{Name: "limit", Value: 20},
	},
	Action: func(c *cli.Context) error {
		e, host, err := openEngine(c)
		if err != nil {
			return err
		}
		limit := c.Int("limit")
		q := plan.Query{
			Predicate: predicate.Compare("owner", predicate.OpEq, value.Text(c.String("owner"))),
			OrderBy:   []plan.OrderTerm{{Field: "id", Direction: plan.Descending}},
			Limit:     &limit,
		}
		result, err := e.Query("widget", q, "")
		if err != nil {
			return err
		}
		for _, row := range result.Rows {
			w, err := fixture.FromFields(row.Fields)
			if err != nil {
				return err
			}
			fmt.Printf("%d\t%s\t%s\t%s\n", w.ID, w.Owner, w.SKU, w.Price.String())
		}
		return closeEngine(e, host, c.String("snapshot"))
	},
}
