package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dalemusser/threadhub/internal/app/store/audit"
	"github.com/dalemusser/threadhub/internal/app/store/queries/integrity"
	"github.com/spf13/cobra"
)

var (
	scanLimit int64
	scanJSON  bool
)

func init() {
	scanCmd.Flags().Int64Var(&scanLimit, "limit", 100,
		"Max findings per category (0 means no limit)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false,
		"Output as JSON for scripting")
}

// scanReport is the full picture: referential drift found by the integrity
// queries, plus failed cascade deletes whose retraction was never replayed.
type scanReport struct {
	*integrity.Report
	UnrepairedCascades []audit.Event
}

func runScan(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, db, err := connect(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer client.Disconnect(ctx)

	report, err := integrity.Scan(ctx, db, scanLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan: %v\n", err)
		os.Exit(1)
	}

	failures, err := audit.New(db).ListUnrepairedFailures(ctx, scanLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list failed cascades: %v\n", err)
		os.Exit(1)
	}

	if scanJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(scanReport{Report: report, UnrepairedCascades: failures}); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if report.Clean() && len(failures) == 0 {
		fmt.Println("no referential drift found")
		return
	}

	if len(report.OrphanReplies) > 0 {
		fmt.Printf("orphan replies: %d\n", len(report.OrphanReplies))
		for _, o := range report.OrphanReplies {
			fmt.Printf("  %s (parent %s, author %s)\n",
				o.ID.Hex(), o.ParentID.Hex(), o.AuthorID.Hex())
		}
	}

	if len(report.StaleUsers) > 0 {
		fmt.Printf("users with stale thread refs: %d (%d refs)\n",
			len(report.StaleUsers), report.StaleUserRefs)
		for _, u := range report.StaleUsers {
			fmt.Printf("  %s %q: %d stale\n", u.ID.Hex(), u.Name, len(u.StaleIDs))
		}
	}

	if len(report.StaleCommunities) > 0 {
		fmt.Printf("communities with stale thread refs: %d (%d refs)\n",
			len(report.StaleCommunities), report.StaleCommunityRefs)
		for _, c := range report.StaleCommunities {
			fmt.Printf("  %s %q: %d stale\n", c.ID.Hex(), c.Name, len(c.StaleIDs))
		}
	}

	if len(failures) > 0 {
		fmt.Printf("failed cascades awaiting repair: %d\n", len(failures))
		for _, ev := range failures {
			fmt.Printf("  %s: root %s, %d victims, failed %s\n",
				ev.ID.Hex(), ev.RootID.Hex(), len(ev.VictimIDs),
				ev.Timestamp.Format(time.RFC3339))
		}
	}

	// Non-zero exit so cron wrappers can alert on drift.
	os.Exit(2)
}
