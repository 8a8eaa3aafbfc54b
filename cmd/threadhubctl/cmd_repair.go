package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dalemusser/threadhub/internal/app/store/audit"
	"github.com/dalemusser/threadhub/internal/app/store/crossref"
	"github.com/dalemusser/threadhub/internal/app/store/queries/integrity"
	threadstore "github.com/dalemusser/threadhub/internal/app/store/threads"
	"github.com/dalemusser/threadhub/internal/domain/models"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	repairLimit   int64
	repairDryRun  bool
	repairOrphans bool
)

func init() {
	repairCmd.Flags().Int64Var(&repairLimit, "limit", 50,
		"Max findings to repair per category in one run")
	repairCmd.Flags().BoolVar(&repairDryRun, "dry-run", false,
		"List what would be repaired without writing")
	repairCmd.Flags().BoolVar(&repairOrphans, "orphans", false,
		"Also delete reply subtrees whose parent thread is gone")
}

// runRepair replays the owner-list retraction for cascade deletes that
// failed after their bulk delete. The audit trail keeps the victim and
// owner id sets of every failed event, so the retraction can be re-run
// verbatim. Retracting ids that were already pulled matches nothing,
// which makes the replay safe to repeat.
//
// With --orphans it also deletes reply subtrees that lost their parent to
// a partial cascade, running the same steps as a regular cascading delete.
func runRepair(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, db, err := connect(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer client.Disconnect(ctx)

	auditStore := audit.New(db)
	updater := crossref.New(db)

	incomplete := replayRetractions(ctx, auditStore, updater)
	if repairOrphans {
		if deleteOrphanSubtrees(ctx, db, auditStore, updater) {
			incomplete = true
		}
	}

	if incomplete {
		os.Exit(1)
	}
}

// replayRetractions re-runs the recorded retraction of every unrepaired
// failed event. Reports whether any event was left unrepaired.
func replayRetractions(ctx context.Context, auditStore *audit.Store, updater *crossref.Updater) bool {
	events, err := auditStore.ListUnrepairedFailures(ctx, repairLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list failures: %v\n", err)
		return true
	}

	if len(events) == 0 {
		fmt.Println("no failed cascade deletes awaiting repair")
		return false
	}

	repaired := 0
	for _, ev := range events {
		if repairDryRun {
			fmt.Printf("would repair %s: root %s, %d victims, %d authors, %d communities (failed %s)\n",
				ev.ID.Hex(), ev.RootID.Hex(), len(ev.VictimIDs), len(ev.AuthorIDs),
				len(ev.CommunityIDs), ev.Timestamp.Format(time.RFC3339))
			continue
		}

		if err := updater.Retract(ctx, ev.VictimIDs, ev.AuthorIDs, ev.CommunityIDs); err != nil {
			fmt.Fprintf(os.Stderr, "repair %s: retract: %v\n", ev.ID.Hex(), err)
			continue
		}
		if err := auditStore.MarkRepaired(ctx, ev.ID); err != nil {
			fmt.Fprintf(os.Stderr, "repair %s: mark repaired: %v\n", ev.ID.Hex(), err)
			continue
		}

		fmt.Printf("repaired %s: root %s, %d victims\n",
			ev.ID.Hex(), ev.RootID.Hex(), len(ev.VictimIDs))
		repaired++
	}

	if repairDryRun {
		fmt.Printf("%d failed events awaiting repair\n", len(events))
		return false
	}

	fmt.Printf("repaired %d of %d failed events\n", repaired, len(events))
	return repaired < len(events)
}

// deleteOrphanSubtrees finds replies whose parent vanished and deletes each
// one's subtree. Every deletion is recorded in the audit trail, so a
// retraction that fails here is picked up by the next repair run like any
// other failed cascade. Reports whether any orphan was left in place.
func deleteOrphanSubtrees(ctx context.Context, db *mongo.Database, auditStore *audit.Store, updater *crossref.Updater) bool {
	orphans, err := integrity.OrphanReplies(ctx, db, repairLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "find orphans: %v\n", err)
		return true
	}

	if len(orphans) == 0 {
		fmt.Println("no orphaned replies found")
		return false
	}

	thrStore := threadstore.New(db)
	removed := 0

	for _, o := range orphans {
		root, err := thrStore.GetByID(ctx, o.ID)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				// Gone since the scan; nothing left to delete.
				removed++
				continue
			}
			fmt.Fprintf(os.Stderr, "orphan %s: fetch: %v\n", o.ID.Hex(), err)
			continue
		}

		descendants, err := thrStore.Descendants(ctx, root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "orphan %s: descendants: %v\n", o.ID.Hex(), err)
			continue
		}
		victims, authorIDs, communityIDs := subtreeOwnerSets(root, descendants)

		if repairDryRun {
			fmt.Printf("would delete orphan subtree %s: %d victims (lost parent %s)\n",
				o.ID.Hex(), len(victims), o.ParentID.Hex())
			removed++
			continue
		}

		if _, err := thrStore.DeleteByIDs(ctx, victims); err != nil {
			fmt.Fprintf(os.Stderr, "orphan %s: delete: %v\n", o.ID.Hex(), err)
			continue
		}

		if err := updater.Retract(ctx, victims, authorIDs, communityIDs); err != nil {
			fmt.Fprintf(os.Stderr, "orphan %s: retract: %v\n", o.ID.Hex(), err)
			logErr := auditStore.Log(ctx, audit.Event{
				RootID:        root.ID,
				VictimIDs:     victims,
				AuthorIDs:     authorIDs,
				CommunityIDs:  communityIDs,
				Success:       false,
				FailureReason: err.Error(),
			})
			if logErr != nil {
				fmt.Fprintf(os.Stderr, "orphan %s: audit: %v\n", o.ID.Hex(), logErr)
			}
			continue
		}

		if err := auditStore.Log(ctx, audit.Event{
			RootID:       root.ID,
			VictimIDs:    victims,
			AuthorIDs:    authorIDs,
			CommunityIDs: communityIDs,
			Success:      true,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "orphan %s: audit: %v\n", o.ID.Hex(), err)
		}

		fmt.Printf("deleted orphan subtree %s: %d victims\n", o.ID.Hex(), len(victims))
		removed++
	}

	if repairDryRun {
		fmt.Printf("%d orphaned replies found\n", len(orphans))
		return false
	}

	fmt.Printf("deleted %d of %d orphan subtrees\n", removed, len(orphans))
	return removed < len(orphans)
}

// subtreeOwnerSets flattens a subtree into the sets a cascade works on: the
// victim ids in topological order, and the distinct author and community ids
// whose thread lists reference them.
func subtreeOwnerSets(root models.Thread, descendants []models.Thread) (victims, authorIDs, communityIDs []primitive.ObjectID) {
	victims = make([]primitive.ObjectID, 0, len(descendants)+1)
	victims = append(victims, root.ID)
	for _, d := range descendants {
		victims = append(victims, d.ID)
	}

	authorSeen := map[primitive.ObjectID]bool{root.AuthorID: true}
	authorIDs = []primitive.ObjectID{root.AuthorID}
	communitySeen := map[primitive.ObjectID]bool{}
	if root.CommunityID != nil {
		communitySeen[*root.CommunityID] = true
		communityIDs = append(communityIDs, *root.CommunityID)
	}
	for _, d := range descendants {
		if !authorSeen[d.AuthorID] {
			authorSeen[d.AuthorID] = true
			authorIDs = append(authorIDs, d.AuthorID)
		}
		if d.CommunityID != nil && !communitySeen[*d.CommunityID] {
			communitySeen[*d.CommunityID] = true
			communityIDs = append(communityIDs, *d.CommunityID)
		}
	}
	return victims, authorIDs, communityIDs
}
