package providers_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/providers"
)

// ── helpers ───────────────────────────────────────────────────────────────────

type tagFixture struct {
	c         *container.Container
	factories *providers.FactoryProvider
	tags      *providers.TagProvider
	calls     map[string]int
	mu        sync.Mutex
}

func newTagFixture(t *testing.T) *tagFixture {
	t.Helper()
	f := &tagFixture{
		factories: providers.NewFactoryProvider(),
		tags:      providers.NewTagProvider(),
		calls:     make(map[string]int),
	}
	f.c = newContainer(t, f.factories, f.tags)
	return f
}

// transient registers a non-singleton factory counting its invocations.
func (f *tagFixture) transient(t *testing.T, key string) {
	t.Helper()
	require.NoError(t, f.factories.Register(key, func(container.Resolver, container.Args) (any, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls[key]++
		return key + "-instance", nil
	}, false, false))
}

func (f *tagFixture) tagged(t *testing.T, tagged *providers.Tagged) *providers.TaggedDependencies {
	t.Helper()
	deps, err := container.Resolve[*providers.TaggedDependencies](f.c, tagged)
	require.NoError(t, err)
	return deps
}

// ── Tags ──────────────────────────────────────────────────────────────────────

func TestTag_Get(t *testing.T) {
	tag := providers.NewTag("report", providers.Attr{Key: "weight", Value: 10})

	v, ok := tag.Get("weight")
	assert.True(t, ok)
	assert.Equal(t, 10, v)

	_, ok = tag.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, "Tag(report, weight=10)", tag.String())
	assert.Equal(t, "Tag(plain)", providers.NewTag("plain").String())
}

// ── TagProvider ───────────────────────────────────────────────────────────────

func TestTagProvider_ResolvesEveryTaggedKey(t *testing.T) {
	f := newTagFixture(t)
	f.transient(t, "X")
	f.transient(t, "Y")
	require.NoError(t, f.tags.RegisterNames("X", "t"))
	require.NoError(t, f.tags.RegisterNames("Y", "t"))

	deps := f.tagged(t, providers.NewTagged("t"))

	values, err := deps.Values()
	require.NoError(t, err)
	assert.Equal(t, []any{"X-instance", "Y-instance"}, values)
	assert.Equal(t, []container.Key{"X", "Y"}, deps.Keys())
}

func TestTagProvider_EachDependencyBuiltAtMostOnce(t *testing.T) {
	f := newTagFixture(t)
	f.transient(t, "X")
	f.transient(t, "Y")
	require.NoError(t, f.tags.RegisterNames("X", "t"))
	require.NoError(t, f.tags.RegisterNames("Y", "t"))

	deps := f.tagged(t, providers.NewTagged("t"))
	for i := 0; i < 3; i++ {
		_, err := deps.Values()
		require.NoError(t, err)
	}

	assert.Equal(t, map[string]int{"X": 1, "Y": 1}, f.calls)
}

func TestTagProvider_LazyResolution(t *testing.T) {
	f := newTagFixture(t)
	f.transient(t, "X")
	f.transient(t, "Y")
	require.NoError(t, f.tags.RegisterNames("X", "t"))
	require.NoError(t, f.tags.RegisterNames("Y", "t"))

	deps := f.tagged(t, providers.NewTagged("t"))
	assert.Equal(t, 2, deps.Len())
	assert.Empty(t, f.calls, "nothing is built before access")

	_, err := deps.At(1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Y": 1}, f.calls)
}

func TestTagProvider_ConcurrentIteration(t *testing.T) {
	f := newTagFixture(t)
	f.transient(t, "X")
	require.NoError(t, f.tags.RegisterNames("X", "t"))
	deps := f.tagged(t, providers.NewTagged("t"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := deps.Values()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.calls["X"])
}

func TestTagProvider_NeverSingleton(t *testing.T) {
	f := newTagFixture(t)
	f.transient(t, "X")
	require.NoError(t, f.tags.RegisterNames("X", "t"))
	tagged := providers.NewTagged("t")

	first := f.tagged(t, tagged)
	second := f.tagged(t, tagged)

	assert.NotSame(t, first, second)
	assert.NotContains(t, f.c.Singletons(), container.Key(tagged))
}

func TestTagProvider_Filter(t *testing.T) {
	f := newTagFixture(t)
	for _, k := range []string{"light", "heavy"} {
		f.transient(t, k)
	}
	require.NoError(t, f.tags.Register("light", providers.NewTag("report", providers.Attr{Key: "weight", Value: 1})))
	require.NoError(t, f.tags.Register("heavy", providers.NewTag("report", providers.Attr{Key: "weight", Value: 10})))

	deps := f.tagged(t, providers.NewTagged("report", func(tag providers.Tag) bool {
		w, _ := tag.Get("weight")
		return w.(int) > 5
	}))

	assert.Equal(t, []container.Key{"heavy"}, deps.Keys())
	require.Len(t, deps.Tags(), 1)
	w, _ := deps.Tags()[0].Get("weight")
	assert.Equal(t, 10, w)
}

func TestTagProvider_UnknownTag_Empty(t *testing.T) {
	f := newTagFixture(t)

	deps := f.tagged(t, providers.NewTagged("nothing"))

	values, err := deps.Values()
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestTagProvider_DuplicateTag(t *testing.T) {
	f := newTagFixture(t)
	require.NoError(t, f.tags.RegisterNames("X", "a"))

	err := f.tags.RegisterNames("X", "b", "a")

	var dup *container.DuplicateTagError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Tag)

	// nothing from the failed call was applied
	assert.Equal(t, []string{"a"}, f.tags.TagNames())
	keys, _ := f.tags.Members("b")
	assert.Empty(t, keys)
}

func TestTagProvider_DuplicateTag_WithinOneCall(t *testing.T) {
	f := newTagFixture(t)

	err := f.tags.RegisterNames("X", "a", "a")

	var dup *container.DuplicateTagError
	assert.ErrorAs(t, err, &dup)
}

func TestTagProvider_Members(t *testing.T) {
	f := newTagFixture(t)
	require.NoError(t, f.tags.RegisterNames("X", "t"))
	require.NoError(t, f.tags.Register(container.NewBuild("conn", "db"), providers.NewTag("t")))

	keys, tags := f.tags.Members("t")

	require.Len(t, keys, 2)
	assert.Equal(t, "X", keys[0])
	assert.Equal(t, "t", tags[1].Name)
	assert.Equal(t, []string{"t"}, f.tags.TagNames())
}

func TestTagProvider_Each_StopsOnError(t *testing.T) {
	f := newTagFixture(t)
	f.transient(t, "X")
	require.NoError(t, f.tags.RegisterNames("X", "t"))
	require.NoError(t, f.tags.RegisterNames("missing", "t"))

	deps := f.tagged(t, providers.NewTagged("t"))

	stop := errors.New("stop")
	err := deps.Each(func(any, providers.Tag) error { return stop })
	assert.ErrorIs(t, err, stop)

	_, err = deps.Values()
	var nf *container.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestTagProvider_DeclinesOtherKeys(t *testing.T) {
	p := providers.NewTagProvider()
	var nilTagged *providers.Tagged

	for _, key := range []container.Key{"t", nilTagged} {
		inst, err := p.Provide(nil, key)
		assert.NoError(t, err)
		assert.Nil(t, inst)
	}
}
