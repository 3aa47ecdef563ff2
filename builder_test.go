package ixurl

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signKey = "aaAAbbBB11223344"

func newTestBuilder(t *testing.T, domain string, opts ...Option) *Builder {
	t.Helper()
	opts = append([]Option{WithLibraryParam(false)}, opts...)
	b, err := New([]string{domain}, opts...)
	require.NoError(t, err)
	return b
}

func TestNew_RequiresDomain(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = New([]string{"a.imgix.net", " "})
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Reason, "index 1")
}

func TestNew_CopiesDomains(t *testing.T) {
	domains := []string{"domain.imgix.net", "domain2.imgix.net"}
	b, err := New(domains, WithLibraryParam(false))
	require.NoError(t, err)

	domains[0] = "evil.example.com"
	assert.Equal(t, "https://domain.imgix.net/gaiman.jpg", b.BuildURL("gaiman.jpg", Params{}))
	assert.Equal(t, []string{"domain.imgix.net", "domain2.imgix.net"}, b.Domains())
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name   string
		domain string
		opts   []Option
		path   string
		params Params
		want   string
	}{
		{
			name:   "basic https",
			domain: "domain.imgix.net",
			path:   "gaiman.jpg",
			want:   "https://domain.imgix.net/gaiman.jpg",
		},
		{
			name:   "basic http",
			domain: "domain.imgix.net",
			opts:   []Option{WithHTTPS(false)},
			path:   "gaiman.jpg",
			want:   "http://domain.imgix.net/gaiman.jpg",
		},
		{
			name:   "query string keeps insertion order",
			domain: "domain.imgix.net",
			path:   "gaiman.jpg",
			params: NewParams("w", "500", "blur", "100"),
			want:   "https://domain.imgix.net/gaiman.jpg?w=500&blur=100",
		},
		{
			name:   "signs parameterless requests",
			domain: "domain.imgix.net",
			opts:   []Option{WithSignKey(signKey)},
			path:   "gaiman.jpg",
			want:   "https://domain.imgix.net/gaiman.jpg?s=db6110637ad768e4b1d503cb96e6439a",
		},
		{
			name:   "signs parametered requests",
			domain: "domain.imgix.net",
			opts:   []Option{WithSignKey(signKey)},
			path:   "gaiman.jpg",
			params: NewParams("w", "500", "h", "1000"),
			want:   "https://domain.imgix.net/gaiman.jpg?w=500&h=1000&s=fc4afbc39b6741560717142aeada876c",
		},
		{
			name:   "signs nested paths",
			domain: "domain.imgix.net",
			opts:   []Option{WithSignKey(signKey)},
			path:   "test/gaiman.jpg",
			want:   "https://domain.imgix.net/test/gaiman.jpg?s=51033c27726f19c0f8229a1ed2dc8523",
		},
		{
			name:   "escapes param keys",
			domain: "demo.imgix.net",
			path:   "demo.png",
			params: NewParams("hello world", "interesting"),
			want:   "https://demo.imgix.net/demo.png?hello%20world=interesting",
		},
		{
			name:   "escapes param values",
			domain: "demo.imgix.net",
			path:   "demo.png",
			params: NewParams("hello_world", `/foo"> <script>alert("hacked")</script><`),
			want:   "https://demo.imgix.net/demo.png?hello_world=%2Ffoo%22%3E%20%3Cscript%3Ealert(%22hacked%22)%3C%2Fscript%3E%3C",
		},
		{
			name:   "base64 param variants",
			domain: "demo.imgix.net",
			path:   "~text",
			params: NewParams("txt64", "I cannøt belîév∑ it wors! 😱"),
			want:   "https://demo.imgix.net/~text?txt64=SSBjYW5uw7h0IGJlbMOuw6l24oiRIGl0IHdvcnMhIPCfmLE",
		},
		{
			name:   "basic path with leading slash",
			domain: "my-social-network.imgix.net",
			path:   "/users/1.png",
			want:   "https://my-social-network.imgix.net/users/1.png",
		},
		{
			name:   "absolute proxy path",
			domain: "my-social-network.imgix.net",
			path:   "http://avatars.com/john-smith.png",
			want:   "https://my-social-network.imgix.net/http%3A%2F%2Favatars.com%2Fjohn-smith.png",
		},
		{
			name:   "signs simple paths with parameters",
			domain: "my-social-network.imgix.net",
			opts:   []Option{WithSignKey("FOO123bar")},
			path:   "/users/1.png",
			params: NewParams("w", "400", "h", "300"),
			want:   "https://my-social-network.imgix.net/users/1.png?w=400&h=300&s=c7b86f666a832434dd38577e38cf86d1",
		},
		{
			name:   "signs encoded proxy paths",
			domain: "my-social-network.imgix.net",
			opts:   []Option{WithSignKey("FOO123bar")},
			path:   "/http%3A%2F%2Favatars.com%2Fjohn-smith.png",
			want:   "https://my-social-network.imgix.net/http%3A%2F%2Favatars.com%2Fjohn-smith.png?s=493a52f008c91416351f8b33d4883135",
		},
		{
			name:   "signs unencoded proxy paths the same way",
			domain: "my-social-network.imgix.net",
			opts:   []Option{WithSignKey("FOO123bar")},
			path:   "http://avatars.com/john-smith.png",
			params: NewParams("w", "400", "h", "300"),
			want:   "https://my-social-network.imgix.net/http%3A%2F%2Favatars.com%2Fjohn-smith.png?w=400&h=300&s=61ea1cc7add87653bb0695fe25f2b534",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(t, tt.domain, tt.opts...)
			assert.Equal(t, tt.want, b.BuildURL(tt.path, tt.params))
		})
	}
}

func TestBuildURL_PathVariants(t *testing.T) {
	b := newTestBuilder(t, "demo.imgix.net")
	tests := []struct {
		path string
		want string
	}{
		{"/&$+,:;=?@#.jpg", "https://demo.imgix.net/%26%24%2B%2C%3A%3B%3D%3F%40%23.jpg"},
		{`/ <>[]{}|\^%.jpg`, "https://demo.imgix.net/%20%3C%3E%5B%5D%7B%7D%7C%5C%5E%25.jpg"},
		{"/ساندویچ.jpg", "https://demo.imgix.net/%D8%B3%D8%A7%D9%86%D8%AF%D9%88%DB%8C%DA%86.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, b.BuildURL(tt.path, Params{}))
		})
	}
}

func TestBuildURL_LibraryParam(t *testing.T) {
	b, err := New([]string{"demo.imgix.net"})
	require.NoError(t, err)
	assert.Equal(t, "https://demo.imgix.net/demo.png?ixlib=go-"+Version, b.BuildURL("demo.png", Params{}))

	// A caller supplied value wins and is not duplicated.
	got := b.BuildURL("demo.png", NewParams(LibraryParam, "custom-1.0"))
	assert.Equal(t, "https://demo.imgix.net/demo.png?ixlib=custom-1.0", got)
}

func TestBuildURL_LibraryParamIsSigned(t *testing.T) {
	b, err := New([]string{"domain.imgix.net"}, WithSignKey(signKey))
	require.NoError(t, err)

	got := b.BuildURL("gaiman.jpg", Params{})
	want := "https://domain.imgix.net/gaiman.jpg?ixlib=go-" + Version +
		"&s=" + Sign(signKey, "gaiman.jpg", "ixlib=go-"+Version)
	assert.Equal(t, want, got)
}

func TestBuildURL_SignatureParamPresence(t *testing.T) {
	paths := []string{"gaiman.jpg", "/users/1.png", "http://avatars.com/a.png", "a/b/c d.png"}
	unsigned := newTestBuilder(t, "demo.imgix.net")
	signed := newTestBuilder(t, "demo.imgix.net", WithSignKey(signKey))

	for _, p := range paths {
		assert.NotContains(t, unsigned.BuildURL(p, Params{}), "s=")
		assert.Contains(t, signed.BuildURL(p, Params{}), "?s=")
	}
}

func TestBuildURL_ReplacesCallerSignature(t *testing.T) {
	b := newTestBuilder(t, "domain.imgix.net", WithSignKey(signKey))
	got := b.BuildURL("gaiman.jpg", NewParams("w", "500", "s", "forged", "h", "1000"))
	assert.Equal(t, "https://domain.imgix.net/gaiman.jpg?w=500&h=1000&s=fc4afbc39b6741560717142aeada876c", got)
}

func TestBuildURL_DoesNotMutateParams(t *testing.T) {
	b, err := New([]string{"demo.imgix.net"}, WithSignKey(signKey))
	require.NoError(t, err)

	params := NewParams("w", "300")
	b.BuildURL("demo.png", params)
	assert.Equal(t, []string{"w"}, params.Keys())
}

func TestBuildURL_Idempotent(t *testing.T) {
	b, err := New([]string{"a.imgix.net", "b.imgix.net"}, WithSignKey(signKey), WithShardStrategy(ShardCRC))
	require.NoError(t, err)

	params := NewParams("w", "640", "txt64", "hello", "fit", "crop")
	assert.Equal(t, b.BuildURL("photos/cat.jpg", params), b.BuildURL("photos/cat.jpg", params))
}

func TestBuildURL_MultipleDomains(t *testing.T) {
	domains := []string{"domain.imgix.net", "domain2.imgix.net", "domain3.imgix.net"}

	t.Run("none picks first", func(t *testing.T) {
		b, err := New(domains, WithLibraryParam(false), WithShardStrategy(ShardNone))
		require.NoError(t, err)
		for range 3 {
			assert.Equal(t, "https://domain.imgix.net/gaiman.jpg", b.BuildURL("gaiman.jpg", Params{}))
		}
	})

	t.Run("cycle", func(t *testing.T) {
		b, err := New(domains, WithLibraryParam(false), WithShardStrategy(ShardCycle))
		require.NoError(t, err)
		var got []string
		for range 4 {
			got = append(got, b.BuildURL("gaiman.jpg", Params{}))
		}
		assert.Equal(t, []string{
			"https://domain.imgix.net/gaiman.jpg",
			"https://domain2.imgix.net/gaiman.jpg",
			"https://domain3.imgix.net/gaiman.jpg",
			"https://domain.imgix.net/gaiman.jpg",
		}, got)
	})

	t.Run("crc", func(t *testing.T) {
		b, err := New(domains, WithLibraryParam(false), WithShardStrategy(ShardCRC))
		require.NoError(t, err)
		assert.Equal(t, "https://domain.imgix.net/test1.png", b.BuildURL("test1.png", Params{}))
		assert.Equal(t, "https://domain3.imgix.net/test2.png", b.BuildURL("test2.png", Params{}))
		assert.Equal(t, "https://domain2.imgix.net/test3.png", b.BuildURL("test3.png", Params{}))
		// Stable across calls.
		assert.Equal(t, "https://domain3.imgix.net/test2.png", b.BuildURL("/test2.png", Params{}))
	})

	t.Run("custom selector", func(t *testing.T) {
		last := func(_ string, n int) int { return n - 1 }
		b, err := New(domains, WithLibraryParam(false), WithShardStrategy(ShardCycle), WithDomainSelector(last))
		require.NoError(t, err)
		assert.Equal(t, "https://domain3.imgix.net/gaiman.jpg", b.BuildURL("gaiman.jpg", Params{}))
	})

	t.Run("out of range selector falls back to first", func(t *testing.T) {
		var buf bytes.Buffer
		bad := func(string, int) int { return 7 }
		b, err := New(domains, WithLibraryParam(false), WithDomainSelector(bad),
			WithLogger(zerolog.New(&buf)))
		require.NoError(t, err)
		assert.Equal(t, "https://domain.imgix.net/gaiman.jpg", b.BuildURL("gaiman.jpg", Params{}))
		assert.Contains(t, buf.String(), "out of range")
	})
}

func TestBuildURL_CycleIsSafeForConcurrentUse(t *testing.T) {
	domains := []string{"a.imgix.net", "b.imgix.net", "c.imgix.net"}
	b, err := New(domains, WithLibraryParam(false), WithShardStrategy(ShardCycle))
	require.NoError(t, err)

	const calls = 300
	var (
		mu     sync.Mutex
		counts = map[string]int{}
		wg     sync.WaitGroup
	)
	for range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := b.BuildURL("x.png", Params{})
			host := strings.TrimSuffix(strings.TrimPrefix(u, "https://"), "/x.png")
			mu.Lock()
			counts[host]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	for _, d := range domains {
		assert.Equal(t, calls/len(domains), counts[d], d)
	}
}
