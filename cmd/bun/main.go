package main

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/ChuloWay/gamification-system/config"
	"github.com/ChuloWay/gamification-system/internal/db/bundb"
	"github.com/ChuloWay/gamification-system/internal/dbmigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

// moduleMigrator binds a module name to its migrator. Order matters: the
// leaderboard tables reference participants and badges.
type moduleMigrator struct {
	name     string
	migrator *migrate.Migrator
}

func main() {
	cliApp := &cli.App{
		Name:  "bun",
		Usage: "gamification database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the configuration file",
			},
		},
		Commands: []*cli.Command{
			newMigrateCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withMigrators loads config, opens the database and hands the ordered
// migrators to fn.
func withMigrators(c *cli.Context, fn func(cfg *config.Config, db *bun.DB, migrators []moduleMigrator) error) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := bundb.Open(c.Context, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	modules := dbmigrate.Modules()
	migrators := make([]moduleMigrator, 0, len(modules))
	for _, mod := range modules {
		migrators = append(migrators, moduleMigrator{
			name:     mod.Name,
			migrator: migrate.NewMigrator(db, mod.Migrations),
		})
	}
	return fn(cfg, db, migrators)
}

func findMigrator(migrators []moduleMigrator, name string) (*migrate.Migrator, error) {
	for _, m := range migrators {
		if m.name == name {
			return m.migrator, nil
		}
	}
	return nil, fmt.Errorf("invalid module name: %s", name)
}

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(_ *config.Config, _ *bun.DB, migrators []moduleMigrator) error {
						// Every module shares bun's migration tables.
						fmt.Println("Initializing migration tables")
						return migrators[0].migrator.Init(c.Context)
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database and the River queue schema",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(cfg *config.Config, _ *bun.DB, migrators []moduleMigrator) error {
						for _, m := range migrators {
							fmt.Printf("Running migrations for module: %s\n", m.name)
							group, err := m.migrator.Migrate(c.Context)
							if err != nil {
								return fmt.Errorf("module %s: %w", m.name, err)
							}
							if group.IsZero() {
								fmt.Printf("No new migrations to run for module: %s\n", m.name)
							} else {
								fmt.Printf("Migrated module: %s to %s\n", m.name, group)
							}
						}

						fmt.Println("Running River queue migrations")
						return dbmigrate.MigrateRiver(c.Context, cfg.Postgres.DSN)
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group of every module",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(_ *config.Config, _ *bun.DB, migrators []moduleMigrator) error {
						reversed := slices.Clone(migrators)
						slices.Reverse(reversed)
						for _, m := range reversed {
							fmt.Printf("Rolling back migrations for module: %s\n", m.name)
							group, err := m.migrator.Rollback(c.Context)
							if err != nil {
								return fmt.Errorf("module %s: %w", m.name, err)
							}
							if group.IsZero() {
								fmt.Printf("No groups to roll back for module: %s\n", m.name)
							} else {
								fmt.Printf("Rolled back module: %s to %s\n", m.name, group)
							}
						}
						return nil
					})
				},
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(_ *config.Config, _ *bun.DB, migrators []moduleMigrator) error {
						migrator, err := findMigrator(migrators, c.Args().First())
						if err != nil {
							return err
						}

						name := strings.Join(c.Args().Tail(), "_")
						mf, err := migrator.CreateGoMigration(c.Context, name)
						if err != nil {
							return err
						}
						fmt.Printf("Created migration for module %s: %s (%s)\n", c.Args().First(), mf.Name, mf.Path)
						return nil
					})
				},
			},
			{
				Name:      "create_sql",
				Usage:     "create up and down SQL migrations",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(_ *config.Config, _ *bun.DB, migrators []moduleMigrator) error {
						migrator, err := findMigrator(migrators, c.Args().First())
						if err != nil {
							return err
						}

						name := strings.Join(c.Args().Tail(), "_")
						files, err := migrator.CreateSQLMigrations(c.Context, name)
						if err != nil {
							return err
						}
						for _, mf := range files {
							fmt.Printf("Created migration for module %s: %s (%s)\n", c.Args().First(), mf.Name, mf.Path)
						}
						return nil
					})
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(_ *config.Config, _ *bun.DB, migrators []moduleMigrator) error {
						for _, m := range migrators {
							ms, err := m.migrator.MigrationsWithStatus(c.Context)
							if err != nil {
								return err
							}
							fmt.Printf("Migrations for module: %s\n", m.name)
							fmt.Printf("  %s\n", ms)
							fmt.Printf("  Applied: %s\n", ms.Applied())
							fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
						}
						return nil
					})
				},
			},
		},
	}
}
