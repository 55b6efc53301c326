// End-to-end CLI tests: initialization, entry lifecycle, schema
// customization, and validation through the lifelists binary.
package integration

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCreatesDirectoriesAndDefaults(t *testing.T) {
	env := newTestEnv(t)

	stdout := env.mustRun("init")
	assert.Contains(t, stdout, "initialized successfully")

	if _, err := os.Stat(filepath.Join(env.ConfigDir, "config.json")); err != nil {
		t.Errorf("config.json not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.DataDir, "lifelists.db")); err != nil {
		t.Errorf("lifelists.db not created: %v", err)
	}
}

func TestTemplateListShowsBuiltIns(t *testing.T) {
	env := newTestEnv(t)

	stdout := env.mustRun("template", "list")
	for _, name := range []string{"Wildlife", "Plants", "Books", "Travel", "Astronomy", "Foods"} {
		assert.Contains(t, stdout, name, "built-in %s missing from list", name)
	}
	assert.Contains(t, stdout, "(built-in)")
}

func TestEntryLifecycle(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("entry", "add", "Books", "Parable of the Sower",
		"--tier", "read",
		"--field", "Author=Octavia E. Butler",
		"--field", "Rating=5")

	stdout := env.mustRun("entry", "list", "Books")
	require.Contains(t, stdout, "Parable of the Sower")
	require.Contains(t, stdout, "read")

	stdout = env.mustRun("entry", "show", "Books", "Parable of the Sower")
	assert.Contains(t, stdout, "Octavia E. Butler")
	assert.Contains(t, stdout, "Rating: 5")

	env.mustRun("entry", "tier", "Books", "Parable of the Sower", "want to read")
	stdout = env.mustRun("entry", "list", "Books", "--tier", "want to read")
	assert.Contains(t, stdout, "Parable of the Sower")

	env.mustRun("entry", "delete", "Books", "Parable of the Sower")
	stdout = env.mustRun("entry", "list", "Books")
	assert.NotContains(t, stdout, "Parable of the Sower")
}

func TestEntryAddRejectsInvalidRecord(t *testing.T) {
	env := newTestEnv(t)

	// Rating above the bound plus a missing required Author: both
	// violations must surface and nothing may be stored.
	_, stderr, code := env.run("entry", "add", "Books", "Broken",
		"--tier", "read",
		"--field", "Rating=6")
	require.Equal(t, 1, code, "invalid entry accepted")
	assert.Contains(t, stderr, "Author")
	assert.Contains(t, stderr, "Rating")

	stdout := env.mustRun("entry", "list", "Books")
	assert.NotContains(t, stdout, "Broken")
}

func TestTextFieldAcceptsNumericLookingValue(t *testing.T) {
	env := newTestEnv(t)

	// "75" is a perfectly good city name as far as a text field is
	// concerned; only number and rating fields read it as a number.
	env.mustRun("entry", "add", "Travel", "Area 51",
		"--tier", "visited",
		"--field", "City=75",
		"--field", "Country=USA")

	stdout := env.mustRun("entry", "show", "Travel", "Area 51")
	assert.Contains(t, stdout, "City: 75")

	// The same digits routed at a number field still arrive typed.
	env.mustRun("entry", "add", "Books", "Numbered",
		"--tier", "read",
		"--field", "Author=Anon",
		"--field", "Year=1975",
		"--field", "Rating=3")
	stdout = env.mustRun("entry", "show", "Books", "Numbered")
	assert.Contains(t, stdout, "Year: 1975")
	assert.Contains(t, stdout, "Rating: 3")
}

func TestEntryAddRejectsUnknownTier(t *testing.T) {
	env := newTestEnv(t)

	_, stderr, code := env.run("entry", "add", "Travel", "Atlantis",
		"--tier", "lost",
		"--field", "Country=none")
	require.Equal(t, 1, code)
	// The vocabulary of valid tiers accompanies the rejection.
	assert.Contains(t, stderr, "visited")
}

func TestFieldCustomizationPersistsAcrossRuns(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("field", "add", "Books", "Translator")
	env.mustRun("field", "remove", "Books", "Genre")
	env.mustRun("field", "reorder", "Books", "Rating", "Author")

	// A fresh process replays the persisted log.
	stdout := env.mustRun("template", "show", "Books")
	assert.Contains(t, stdout, "Translator")
	assert.NotContains(t, stdout, "Genre")

	fields := fieldOrder(t, env)
	require.GreaterOrEqual(t, len(fields), 2)
	assert.Equal(t, "Rating", fields[0])
	assert.Equal(t, "Author", fields[1])

	stdout = env.mustRun("field", "log", "Books")
	assert.Contains(t, stdout, "add_field")
	assert.Contains(t, stdout, "remove_field")
	assert.Contains(t, stdout, "reorder")
}

// fieldOrder returns Books' effective field names via template show --json.
func fieldOrder(t *testing.T, env *testEnv) []string {
	t.Helper()
	stdout := env.mustRun("--json", "template", "show", "Books")
	var schema struct {
		Fields []struct {
			Name string `json:"name"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &schema))
	names := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		names[i] = f.Name
	}
	return names
}

func TestFieldAddDuplicateRejected(t *testing.T) {
	env := newTestEnv(t)

	_, stderr, code := env.run("field", "add", "Books", "Author")
	require.Equal(t, 1, code)
	assert.Contains(t, stderr, "duplicate")

	// The failed operation must not linger in the log.
	stdout := env.mustRun("field", "log", "Books")
	assert.Contains(t, stdout, "no customizations")
}

func TestRequiredChoiceFieldEnforced(t *testing.T) {
	env := newTestEnv(t)

	_, stderr, code := env.run("entry", "add", "Astronomy", "Andromeda",
		"--tier", "observed",
		"--field", "Object Type=galaxy cluster")
	require.Equal(t, 1, code)
	assert.Contains(t, stderr, "galaxy", "allowed values should be listed")

	env.mustRun("entry", "add", "Astronomy", "Andromeda",
		"--tier", "observed",
		"--field", "Object Type=galaxy")
}

func TestObservationLifecycle(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("entry", "add", "Wildlife", "Barn Owl",
		"--tier", "wild",
		"--field", "Scientific Name=Tyto alba")
	env.mustRun("observe", "add", "Wildlife", "Barn Owl",
		"--date", "2025-06-14",
		"--location", "old barn",
		"--lat", "52.1", "--lon", "5.3",
		"--notes", "pair nesting",
		"--photo", "owl.jpg")

	stdout := env.mustRun("observe", "list", "Wildlife", "Barn Owl")
	assert.Contains(t, stdout, "2025-06-14")
	assert.Contains(t, stdout, "old barn")
	assert.Contains(t, stdout, "1 photo(s)")

	// Observations waive required fields but still type-check given ones.
	_, stderr, code := env.run("observe", "add", "Wildlife", "Barn Owl",
		"--field", "Count=many")
	require.Equal(t, 1, code)
	assert.Contains(t, stderr, "Count")
}

func TestUserTemplateLifecycle(t *testing.T) {
	env := newTestEnv(t)

	definition := `{
		"tiers": ["owned", "wanted"],
		"entry_term": "record",
		"observation_term": "listen",
		"fields": [
			{"name": "Artist", "type": "text", "required": true},
			{"name": "Rating", "type": "rating", "rating": {"max": 5}}
		]
	}`
	env.mustRun("template", "create", "Vinyl", definition)

	stdout := env.mustRun("template", "list")
	assert.Contains(t, stdout, "Vinyl")

	// Duplicate names are rejected, built-in or not.
	_, _, code := env.run("template", "create", "Vinyl", definition)
	assert.Equal(t, 1, code)
	_, _, code = env.run("template", "create", "Books", definition)
	assert.Equal(t, 1, code)

	env.mustRun("entry", "add", "Vinyl", "Blue Train",
		"--tier", "owned", "--field", "Artist=John Coltrane")

	// In use: deletion must fail until the entry goes away.
	_, stderr, code := env.run("template", "delete", "Vinyl")
	require.Equal(t, 1, code)
	assert.Contains(t, stderr, "existing entries")

	env.mustRun("entry", "delete", "Vinyl", "Blue Train")
	env.mustRun("template", "delete", "Vinyl")

	// Built-ins cannot be deleted.
	_, _, code = env.run("template", "delete", "Books")
	assert.Equal(t, 1, code)
}

func TestValidateFlagsEntriesAfterSchemaChange(t *testing.T) {
	env := newTestEnv(t)

	definition := `{
		"tiers": ["owned", "wanted"],
		"fields": [{"name": "Maker", "type": "text"}]
	}`
	env.mustRun("template", "create", "Pens", definition)
	env.mustRun("entry", "add", "Pens", "Safari", "--tier", "wanted")

	stdout := env.mustRun("validate", "Pens")
	assert.Contains(t, stdout, "1 entries valid")

	// Adding a required field leaves the stored entry behind the schema;
	// validate reports it without modifying anything.
	env.mustRun("field", "add", "Pens", "Nib", "--required")
	stdout2, stderr, code := env.run("validate", "Pens")
	require.Equal(t, 1, code)
	assert.Contains(t, stderr, "failed validation")
	assert.Contains(t, stdout2, "Nib")

	// The entry is untouched and still listed.
	assert.Contains(t, env.mustRun("entry", "list", "Pens"), "Safari")
}

func TestExportJSONL(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("entry", "add", "Books", "Dawn",
		"--tier", "read", "--field", "Author=Octavia E. Butler", "--field", "Rating=4")
	env.mustRun("entry", "add", "Books", "Imago",
		"--tier", "want to read", "--field", "Author=Octavia E. Butler")
	env.mustRun("observe", "add", "Books", "Dawn", "--date", "2025-01-02", "--photo", "cover.jpg")

	outPath := filepath.Join(t.TempDir(), "books.jsonl")
	stdout := env.mustRun("export", "Books", "--output", outPath)
	assert.Contains(t, stdout, "2 record(s)")

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, 2)

	var record struct {
		Name   string `json:"name"`
		Fields []struct {
			Name  string `json:"name"`
			Value any    `json:"value"`
		} `json:"fields"`
		Observations []struct {
			Photos []string `json:"photos"`
		} `json:"observations"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "Dawn", record.Name)
	require.NotEmpty(t, record.Fields)
	assert.Equal(t, "Author", record.Fields[0].Name, "fields must follow schema order")
	require.Len(t, record.Observations, 1)
	assert.Equal(t, []string{"cover.jpg"}, record.Observations[0].Photos)

	// --no-photos strips references.
	noPhotos := filepath.Join(t.TempDir(), "books-np.jsonl")
	env.mustRun("export", "Books", "--output", noPhotos, "--no-photos")
	data, err := os.ReadFile(noPhotos)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "cover.jpg")
}

func TestUserConfigReplacesCatalog(t *testing.T) {
	env := newTestEnv(t)
	env.writeConfig(`{
		"database": {"path": "lifelists.db"},
		"lifelist_types": {
			"templates": {
				"Records": {
					"tiers": ["owned", "wanted"],
					"entry_term": "record",
					"observation_term": "listen",
					"default_fields": [
						{"name": "Artist", "type": "text", "required": 1}
					]
				}
			}
		}
	}`)

	stdout := env.mustRun("template", "list")
	assert.Contains(t, stdout, "Records")
	assert.NotContains(t, stdout, "Books", "user catalog must replace built-ins wholesale")

	_, _, code := env.run("entry", "add", "Records", "Blue Train", "--tier", "owned")
	assert.Equal(t, 1, code, "required Artist missing")
	env.mustRun("entry", "add", "Records", "Blue Train",
		"--tier", "owned", "--field", "Artist=John Coltrane")
}

func TestMalformedConfigFailsFast(t *testing.T) {
	env := newTestEnv(t)
	env.writeConfig(`{
		"lifelist_types": {
			"templates": {
				"Broken": {
					"tiers": ["a"],
					"default_fields": [{"name": "R", "type": "rating"}]
				}
			}
		}
	}`)

	// Configuration mistakes are user-fixable, so they exit 1.
	_, stderr, code := env.run("template", "list")
	require.Equal(t, 1, code)
	assert.True(t, strings.Contains(stderr, "rating") || strings.Contains(stderr, "options"),
		"stderr should name the offending field config: %s", stderr)
}
