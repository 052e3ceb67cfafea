package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/container"
)

// ── helpers ───────────────────────────────────────────────────────────────────

// overrideFixture: "db" is a cached singleton on the parent, "mailer" and
// "cache" are built on demand, "report" depends on "mailer".
func overrideFixture(t *testing.T) *container.Container {
	t.Helper()
	c := newContainer(t, funcs{
		"mailer": {build: constant("smtp"), singleton: true},
		"cache":  {build: constant("redis"), singleton: true},
		"conn":   {build: constant("conn")},
		"report": {build: func(r container.Resolver, _ container.Args) (any, error) {
			m, err := r.Get("mailer")
			if err != nil {
				return nil, err
			}
			return "report via " + m.(*service).name, nil
		}},
	})
	require.NoError(t, c.Set("db", "postgres"))
	return c
}

func override(t *testing.T, c *container.Container, opts ...container.OverrideOption) *container.Container {
	t.Helper()
	child, err := c.Override(opts...)
	require.NoError(t, err)
	return child
}

func notFound(t *testing.T, c *container.Container, key container.Key) {
	t.Helper()
	_, err := c.Get(key)
	var nf *container.NotFoundError
	assert.ErrorAs(t, err, &nf, "key %v", key)
}

// ── Inheritance ───────────────────────────────────────────────────────────────

func TestOverride_InheritsEverythingByDefault(t *testing.T) {
	parent := overrideFixture(t)
	child := override(t, parent)

	db, err := child.Get("db")
	require.NoError(t, err)
	assert.Equal(t, "postgres", db)

	report, err := child.Get("report")
	require.NoError(t, err)
	assert.Equal(t, "report via smtp", report)
	assert.Same(t, parent, child.Parent())
}

func TestOverride_BuiltSingletonsStayInChild(t *testing.T) {
	parent := overrideFixture(t)
	child := override(t, parent)

	fromChild, err := child.Get("cache")
	require.NoError(t, err)

	assert.Contains(t, child.Singletons(), "cache")
	assert.NotContains(t, parent.Singletons(), "cache")

	fromParent, err := parent.Get("cache")
	require.NoError(t, err)
	assert.NotSame(t, fromChild, fromParent)
}

func TestOverride_SeesParentSingletonsBuiltLater(t *testing.T) {
	parent := overrideFixture(t)
	child := override(t, parent)

	fromParent, err := parent.Get("mailer")
	require.NoError(t, err)
	fromChild, err := child.Get("mailer")
	require.NoError(t, err)

	assert.Same(t, fromParent, fromChild)
}

func TestOverride_SelfKeyIsChild(t *testing.T) {
	parent := overrideFixture(t)
	require.NoError(t, parent.Set(container.SelfKey, parent))
	child := override(t, parent, container.Include())

	self, err := container.Resolve[*container.Container](child, container.SelfKey)

	require.NoError(t, err)
	assert.Same(t, child, self)
}

func TestOverride_SetOnChildLeavesParent(t *testing.T) {
	parent := overrideFixture(t)
	child := override(t, parent)

	require.NoError(t, child.Set("db", "sqlite"))

	db, _ := parent.Get("db")
	assert.Equal(t, "postgres", db)
	db, _ = child.Get("db")
	assert.Equal(t, "sqlite", db)
}

// ── Overrides ─────────────────────────────────────────────────────────────────

func TestOverride_WithInstances_ShadowsParentAndFeedsFactories(t *testing.T) {
	parent := overrideFixture(t)
	fake := &service{name: "fake"}
	child := override(t, parent, container.WithInstances(map[container.Key]any{
		"db":     "memory",
		"mailer": fake,
	}))

	db, _ := child.Get("db")
	assert.Equal(t, "memory", db)

	report, err := child.Get("report")
	require.NoError(t, err)
	assert.Equal(t, "report via fake", report)

	report, err = parent.Get("report")
	require.NoError(t, err)
	assert.Equal(t, "report via smtp", report)
}

func TestOverride_UnhashableKey(t *testing.T) {
	_, err := overrideFixture(t).Override(container.Exclude([]string{"bad"}))

	var unhashable *container.UnhashableKeyError
	assert.ErrorAs(t, err, &unhashable)
}

// ── Scope ─────────────────────────────────────────────────────────────────────

func TestOverride_Include(t *testing.T) {
	parent := overrideFixture(t)
	child := override(t, parent, container.Include("db", "report"))

	db, err := child.Get("db")
	require.NoError(t, err)
	assert.Equal(t, "postgres", db)

	notFound(t, child, "cache")

	// "report" is visible, its dependency is not.
	_, err = child.Get("report")
	var inst *container.InstantiationError
	require.ErrorAs(t, err, &inst)
	var nf *container.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "mailer", nf.Key)
}

func TestOverride_IncludeNothing_Isolated(t *testing.T) {
	child := override(t, overrideFixture(t), container.Include())

	for _, key := range []container.Key{"db", "mailer", "cache", "report"} {
		notFound(t, child, key)
	}
}

func TestOverride_IncludeBaseKey_CoversBuilds(t *testing.T) {
	child := override(t, overrideFixture(t), container.Include("conn"))

	conn, err := child.Get(container.NewBuild("conn", "replica"))

	require.NoError(t, err)
	assert.Equal(t, "conn", conn.(*service).name)
}

func TestOverride_Exclude(t *testing.T) {
	child := override(t, overrideFixture(t),
		container.Exclude("db", "mailer"),
		container.WithInstances(map[container.Key]any{"mailer": &service{name: "local"}}),
	)

	notFound(t, child, "db")

	report, err := child.Get("report")
	require.NoError(t, err)
	assert.Equal(t, "report via local", report)
}

func TestOverride_Missing_WinsOverInstances(t *testing.T) {
	child := override(t, overrideFixture(t),
		container.WithInstances(map[container.Key]any{"db": "memory"}),
		container.Missing("db", "cache"),
	)

	notFound(t, child, "db")
	notFound(t, child, "cache")

	_, found, err := child.Provide("cache")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestOverride_Nested(t *testing.T) {
	parent := overrideFixture(t)
	middle := override(t, parent, container.Exclude("db"))
	leaf := override(t, middle, container.WithInstances(map[container.Key]any{"extra": 1}))

	notFound(t, leaf, "db")
	extra, err := leaf.Get("extra")
	require.NoError(t, err)
	assert.Equal(t, 1, extra)
	notFound(t, middle, "extra")
}

func TestOverride_SharesMetrics(t *testing.T) {
	parent := overrideFixture(t)
	child := override(t, parent)

	_, err := child.Get("cache")
	require.NoError(t, err)

	assert.Same(t, parent.Metrics(), child.Metrics())
	assert.Equal(t, int64(1), parent.Metrics().Counts()[container.StatCacheMisses])
}
