package envoke

import (
	"net"
	"testing"
	"time"

	"github.com/containeroo/envoke/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodeTarget struct {
	Name    string         `envoke:"name"`
	Timeout time.Duration  `envoke:"timeout"`
	Grace   time.Duration  `envoke:"grace"`
	Ports   []int          `envoke:"ports"`
	Labels  map[string]int `envoke:"labels"`
	Addr    net.IP         `envoke:"addr"`
	Retries *int           `envoke:"retries"`
	DB      struct {
		Host string `envoke:"host"`
		Port uint16 `envoke:"port"`
	} `envoke:"db"`
	Mode    string `envoke:"mode"`
	Backend struct {
		Bucket string `envoke:"bucket"`
	} `envoke:"backend"`
}

func decodeSchema() *RecordSchema {
	storage := func() *VariantSchema {
		return &VariantSchema{Cases: []VariantCase{
			{Name: "s3", Schema: &RecordSchema{Fields: []Field{{Name: "bucket", Type: String, Env: []string{"BUCKET"}}}}},
			{Name: "local", Schema: &RecordSchema{Fields: []Field{{Name: "bucket", Type: String, Default: Static("")}}}},
		}}
	}
	return &RecordSchema{
		Fields: []Field{
			{Name: "name", Type: String, FromEnv: true},
			{Name: "timeout", Type: Duration, FromEnv: true},
			{Name: "grace", Type: String, FromEnv: true},
			{Name: "ports", Type: SliceOf(Int), FromEnv: true},
			{Name: "labels", Type: MapOf(String, Int), FromEnv: true},
			{Name: "addr", Type: String, FromEnv: true},
			{Name: "retries", Type: Optional(Int), FromEnv: true},
			{Name: "db", Nested: &RecordSchema{Fields: []Field{
				{Name: "host", Type: String, Env: []string{"DB_HOST"}},
				{Name: "port", Type: Uint16, Env: []string{"DB_PORT"}},
			}}},
			{Name: "mode", Nested: storage()},
			{Name: "backend", Nested: storage()},
		},
	}
}

func TestRecord_Decode(t *testing.T) {
	t.Parallel()

	src := source.Map{
		"name":    "svc",
		"timeout": "1m",
		"grace":   "30s",
		"ports":   "80,443",
		"labels":  "a=1,b=2",
		"addr":    "10.0.0.1",
		"DB_HOST": "db",
		"DB_PORT": "5432",
		"BUCKET":  "assets",
	}

	t.Run("All hooks", func(t *testing.T) {
		t.Parallel()
		rec, err := ResolveRecord(decodeSchema(), src)
		require.NoError(t, err)

		var out decodeTarget
		require.NoError(t, rec.Decode(&out))

		assert.Equal(t, "svc", out.Name)
		assert.Equal(t, time.Minute, out.Timeout)
		assert.Equal(t, 30*time.Second, out.Grace)
		assert.Equal(t, []int{80, 443}, out.Ports)
		assert.Equal(t, map[string]int{"a": 1, "b": 2}, out.Labels)
		assert.Equal(t, "10.0.0.1", out.Addr.String())
		assert.Nil(t, out.Retries)
		assert.Equal(t, "db", out.DB.Host)
		assert.Equal(t, uint16(5432), out.DB.Port)
		assert.Equal(t, "s3", out.Mode)
		assert.Equal(t, "assets", out.Backend.Bucket)
	})

	t.Run("Optional present", func(t *testing.T) {
		t.Parallel()
		withRetries := source.Overlay(source.Map{"retries": "3"}, src)
		out, err := Load[decodeTarget](decodeSchema(), withRetries)
		require.NoError(t, err)
		require.NotNil(t, out.Retries)
		assert.Equal(t, 3, *out.Retries)
	})

	t.Run("Hook failure", func(t *testing.T) {
		t.Parallel()
		bad := source.Overlay(source.Map{"grace": "soon"}, src)
		_, err := Load[decodeTarget](decodeSchema(), bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid duration "soon"`)
	})

	t.Run("Into a map", func(t *testing.T) {
		t.Parallel()
		rec, err := ResolveRecord(decodeSchema(), src)
		require.NoError(t, err)

		out := map[string]any{}
		require.NoError(t, rec.Decode(&out))
		assert.Equal(t, "svc", out["name"])
		assert.Equal(t, time.Minute, out["timeout"])
	})
}

func TestVariant_Decode(t *testing.T) {
	t.Parallel()

	v, err := ResolveVariant(&VariantSchema{Cases: []VariantCase{
		{Name: "prod", Schema: envSchema("prod")},
	}}, source.Map{"PROD_API_PORT": "443"})
	require.NoError(t, err)

	var out struct {
		APIPort int `envoke:"api_port"`
	}
	require.NoError(t, v.Decode(&out))
	assert.Equal(t, 443, out.APIPort)
}

func TestDecode_SliceBackedMapKeys(t *testing.T) {
	t.Parallel()

	schema := &RecordSchema{Fields: []Field{
		{Name: "hosts", Type: MapOf(Text[net.IP]("ip"), String), FromEnv: true},
	}}
	rec, err := ResolveRecord(schema, source.Map{"hosts": "10.0.0.1=a,10.0.0.2=b"})
	require.NoError(t, err)

	var out struct {
		Hosts map[string]string `envoke:"hosts"`
	}
	require.NoError(t, rec.Decode(&out))
	assert.Equal(t, map[string]string{"10.0.0.1": "a", "10.0.0.2": "b"}, out.Hosts)
}
