package leaderboardmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the ledger ownership tables. They reference participants
// and badges, so they run after those modules.
var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
