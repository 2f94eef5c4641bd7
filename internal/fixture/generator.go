// Package fixture generates synthetic, reproducible project forests and like
// streams for tests, local demos and the seed command.
package fixture

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/okian/curator/internal/domain/graph"
	"github.com/okian/curator/internal/domain/model"
)

// Default generator configuration constants.
const (
	defaultProjects          = 4
	defaultReviewsPerProject = 5
	defaultCommentsPerReview = 2
	defaultRepliesPerComment = 1
	defaultWriters           = 8
	defaultCurators          = 12
	defaultMaxLikes          = 6
	defaultHorizon           = 120 * 24 * time.Hour
	defaultSeed              = 42
	unlikeOdds               = 8 // one in unlikeOdds likes is followed by an unlike
	selfLikeOdds             = 10
)

// txNamespace scopes the deterministic transaction ids.
var txNamespace = uuid.MustParse("6f1c2e4a-93b7-4d0e-9a55-0c8a1f2b7d31")

// Generator builds forests from a seeded source.
type Generator struct {
	projects, reviews, comments, replies int
	writers, curators                    int
	maxLikes                             int
	horizon                              time.Duration
	seed                                 int64
	now                                  time.Time
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSeed sets the random seed. The same seed always yields the same forest.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.seed = seed }
}

// WithNow sets the reference time; like timestamps fall within the horizon before it.
func WithNow(now time.Time) Option {
	return func(g *Generator) {
		if !now.IsZero() {
			g.now = now
		}
	}
}

// WithShape sets how many projects, reviews per project, comments per review
// and replies per comment are generated.
func WithShape(projects, reviews, comments, replies int) Option {
	return func(g *Generator) {
		if projects > 0 {
			g.projects = projects
		}
		if reviews > 0 {
			g.reviews = reviews
		}
		if comments >= 0 {
			g.comments = comments
		}
		if replies >= 0 {
			g.replies = replies
		}
	}
}

// WithPopulation sets the number of distinct writers and curators.
func WithPopulation(writers, curators int) Option {
	return func(g *Generator) {
		if writers > 0 {
			g.writers = writers
		}
		if curators > 0 {
			g.curators = curators
		}
	}
}

// WithMaxLikes caps the number of likes drawn per item.
func WithMaxLikes(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.maxLikes = n
		}
	}
}

// New creates a generator with configuration options.
func New(opts ...Option) *Generator {
	g := &Generator{
		projects: defaultProjects,
		reviews:  defaultReviewsPerProject,
		comments: defaultCommentsPerReview,
		replies:  defaultRepliesPerComment,
		writers:  defaultWriters,
		curators: defaultCurators,
		maxLikes: defaultMaxLikes,
		horizon:  defaultHorizon,
		seed:     defaultSeed,
		now:      time.Now(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate is shorthand for New(opts...).Forest().
func Generate(opts ...Option) model.Forest {
	return New(opts...).Forest()
}

// Forest builds one forest. Writers like their own content now and then so
// self-likes are exercised too.
func (g *Generator) Forest() model.Forest {
	rng := rand.New(rand.NewSource(g.seed)) //nolint:gosec // deterministic seed for reproducible fixtures
	f := make(model.Forest, g.projects)

	for pi := 0; pi < g.projects; pi++ {
		pid := fmt.Sprintf("p%d", pi+1)
		p := &model.Project{ID: pid, Name: "Project " + pid, Reviews: make(map[string]*model.Review, g.reviews)}
		for ri := 0; ri < g.reviews; ri++ {
			rid := fmt.Sprintf("%s.r%d", pid, ri+1)
			r := &model.Review{ID: rid, Sender: g.writer(rng), Comments: make(map[string]*model.Comment, g.comments)}
			r.LikeHistory = g.history(rng, rid, r.Sender)
			for ci := 0; ci < g.comments; ci++ {
				cid := fmt.Sprintf("%s.c%d", rid, ci+1)
				c := &model.Comment{ID: cid, Sender: g.writer(rng), Replies: make(map[string]*model.Reply, g.replies)}
				c.LikeHistory = g.history(rng, cid, c.Sender)
				for xi := 0; xi < g.replies; xi++ {
					xid := fmt.Sprintf("%s.x%d", cid, xi+1)
					x := &model.Reply{ID: xid, Sender: g.writer(rng)}
					x.LikeHistory = g.history(rng, xid, x.Sender)
					c.Replies[xid] = x
				}
				r.Comments[cid] = c
			}
			p.Reviews[rid] = r
		}
		f[pid] = p
	}
	return f
}

func (g *Generator) writer(rng *rand.Rand) string {
	return fmt.Sprintf("writer-%d", rng.Intn(g.writers)+1)
}

func (g *Generator) curator(rng *rand.Rand) string {
	return fmt.Sprintf("curator-%d", rng.Intn(g.curators)+1)
}

// history draws a chronological like history for one item.
func (g *Generator) history(rng *rand.Rand, itemID, author string) []model.LikeEvent {
	n := 0
	if g.maxLikes > 0 {
		n = rng.Intn(g.maxLikes + 1)
	}
	out := make([]model.LikeEvent, 0, n)
	start := g.now.Add(-g.horizon).Unix()
	span := int64(g.horizon / time.Second)
	ts := start + rng.Int63n(span/4+1)

	for i := 0; i < n; i++ {
		sender := g.curator(rng)
		if rng.Intn(selfLikeOdds) == 0 {
			sender = author
		}
		ts += rng.Int63n(span/int64(4*n)+1) + 1
		out = append(out, model.LikeEvent{
			Sender:    sender,
			Timestamp: ts,
			Action:    model.ActionLike,
			TxID:      TxID(itemID, sender, ts, model.ActionLike),
		})
		if rng.Intn(unlikeOdds) == 0 {
			ts++
			out = append(out, model.LikeEvent{
				Sender:    sender,
				Timestamp: ts,
				Action:    model.ActionUnlike,
				TxID:      TxID(itemID, sender, ts, model.ActionUnlike),
			})
		}
	}
	return out
}

// TxID derives a stable transaction id for a like event.
func TxID(itemID, sender string, ts int64, action model.Action) string {
	name := fmt.Sprintf("%s|%s|%d|%s", itemID, sender, ts, action)
	return uuid.NewSHA1(txNamespace, []byte(name)).String()
}

// Submissions flattens every like-history entry of f into ingest submissions,
// ordered by item id then history position.
func Submissions(f model.Forest) []model.LikeSubmission {
	var out []model.LikeSubmission
	for _, it := range graph.Build(f).Items {
		for _, ev := range it.LikeHistory {
			out = append(out, model.LikeSubmission{ItemID: it.ID, Event: ev})
		}
	}
	return out
}

// Stripped returns a deep copy of f with every like history emptied.
func Stripped(f model.Forest) model.Forest {
	cp := f.Clone()
	for _, p := range cp {
		for _, r := range p.Reviews {
			r.LikeHistory = nil
			for _, c := range r.Comments {
				c.LikeHistory = nil
				for _, x := range c.Replies {
					x.LikeHistory = nil
				}
			}
		}
	}
	return cp
}
