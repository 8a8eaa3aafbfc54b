// Package threadqueries provides composed read-only queries for threads:
// subtree expansion with authors and communities resolved in batched fetches.
package threadqueries

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	communitystore "github.com/dalemusser/threadhub/internal/app/store/communities"
	threadstore "github.com/dalemusser/threadhub/internal/app/store/threads"
	userstore "github.com/dalemusser/threadhub/internal/app/store/users"
	"github.com/dalemusser/threadhub/internal/domain/models"
)

// ExpandedThread is a thread with its author, community (roots only) and a
// bounded number of child levels resolved.
type ExpandedThread struct {
	Thread    models.Thread
	Author    *models.User
	Community *models.Community
	Children  []*ExpandedThread
}

// Expand resolves up to depth levels of children below root, the author of
// every node, and the root's community.
func Expand(ctx context.Context, db *mongo.Database, root models.Thread, depth int) (*ExpandedThread, error) {
	nodes, err := ExpandMany(ctx, db, []models.Thread{root}, depth)
	if err != nil {
		return nil, err
	}
	return nodes[0], nil
}

// ExpandMany expands several roots at once. Each child level is fetched in
// one batched call covering all roots, then authors in one call and root
// communities in one call, so the number of store round trips depends on
// depth, never on node count. Children keep their parents' child order;
// dangling child ids are skipped, and a node already placed in the tree is
// never fetched again.
func ExpandMany(ctx context.Context, db *mongo.Database, roots []models.Thread, depth int) ([]*ExpandedThread, error) {
	threads := threadstore.New(db)

	nodes := make([]*ExpandedThread, 0, len(roots))
	all := make([]*ExpandedThread, 0, len(roots))
	visited := make(map[primitive.ObjectID]bool, len(roots))

	for _, t := range roots {
		n := &ExpandedThread{Thread: t}
		nodes = append(nodes, n)
		all = append(all, n)
		visited[t.ID] = true
	}

	parents := nodes
	for level := 0; level < depth && len(parents) > 0; level++ {
		var fetch []primitive.ObjectID
		parentOf := map[primitive.ObjectID]*ExpandedThread{}
		for _, p := range parents {
			for _, cid := range p.Thread.ChildIDs {
				if visited[cid] {
					continue
				}
				visited[cid] = true
				fetch = append(fetch, cid)
				parentOf[cid] = p
			}
		}
		if len(fetch) == 0 {
			break
		}

		found, err := threads.GetByIDs(ctx, fetch)
		if err != nil {
			return nil, err
		}
		byID := make(map[primitive.ObjectID]models.Thread, len(found))
		for _, t := range found {
			byID[t.ID] = t
		}

		var next []*ExpandedThread
		for _, cid := range fetch {
			t, ok := byID[cid]
			if !ok {
				continue
			}
			n := &ExpandedThread{Thread: t}
			parentOf[cid].Children = append(parentOf[cid].Children, n)
			next = append(next, n)
			all = append(all, n)
		}
		parents = next
	}

	if err := resolveAuthors(ctx, db, all); err != nil {
		return nil, err
	}
	if err := resolveCommunities(ctx, db, nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func resolveAuthors(ctx context.Context, db *mongo.Database, nodes []*ExpandedThread) error {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, n := range nodes {
		if seen[n.Thread.AuthorID] {
			continue
		}
		seen[n.Thread.AuthorID] = true
		ids = append(ids, n.Thread.AuthorID)
	}

	found, err := userstore.New(db).GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]models.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}

	// A vanished author leaves the field nil rather than failing the read.
	for _, n := range nodes {
		if u, ok := byID[n.Thread.AuthorID]; ok {
			author := u
			n.Author = &author
		}
	}
	return nil
}

func resolveCommunities(ctx context.Context, db *mongo.Database, roots []*ExpandedThread) error {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, n := range roots {
		if n.Thread.CommunityID == nil || seen[*n.Thread.CommunityID] {
			continue
		}
		seen[*n.Thread.CommunityID] = true
		ids = append(ids, *n.Thread.CommunityID)
	}
	if len(ids) == 0 {
		return nil
	}

	found, err := communitystore.New(db).GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]models.Community, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	for _, n := range roots {
		if n.Thread.CommunityID == nil {
			continue
		}
		if c, ok := byID[*n.Thread.CommunityID]; ok {
			community := c
			n.Community = &community
		}
	}
	return nil
}
