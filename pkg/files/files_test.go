/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: files_test.go
Description: Tests for on-device filesystem parsing. Covers the date-anchored
long-listing split, names with spaces, type classification, magic output
normalization, and printable string extraction.
*/

package files

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseList(t *testing.T) {
	output := `total 24
drwxrwx--x 4 u0_a123 u0_a123 4096 2024-01-15 12:30 cache
-rw------- 1 u0_a123 u0_a123 1832 2024-01-10 08:15 shared_prefs.xml
lrwxrwxrwx 1 root    root      21 2023-05-01 10:00 lib -> /data/app/lib/arm64
`
	entries := ParseList(output)
	require.Len(t, entries, 3)

	assert.Equal(t, "cache", entries[0].Name)
	assert.Equal(t, TypeDir, entries[0].Type)
	assert.Equal(t, "4096", entries[0].Size)
	assert.Equal(t, "2024-01-15 12:30", entries[0].Date)
	assert.Equal(t, "drwxrwx--x", entries[0].Perms)

	assert.Equal(t, "shared_prefs.xml", entries[1].Name)
	assert.Equal(t, TypeFile, entries[1].Type)

	assert.Equal(t, "lib -> /data/app/lib/arm64", entries[2].Name)
	assert.Equal(t, TypeLink, entries[2].Type)
}

func TestParseListNameWithSpaces(t *testing.T) {
	output := "-rw-r--r-- 1 u0_a123 u0_a123 100 2024-01-15 12:30 My Saved File.txt\n"

	entries := ParseList(output)
	require.Len(t, entries, 1)
	assert.Equal(t, "My Saved File.txt", entries[0].Name)
}

func TestParseListSkipsNoise(t *testing.T) {
	output := "total 8\nsome unparseable line\n"
	assert.Empty(t, ParseList(output))
}

func TestParseMagicOutput(t *testing.T) {
	output := `./config.db: SQLite 3.x database
'quoted name.png': PNG image data, 512 x 512
broken line without separator
`
	magic := ParseMagicOutput(output)
	assert.Equal(t, "SQLite 3.x database", magic["config.db"])
	assert.Equal(t, "PNG image data, 512 x 512", magic["quoted name.png"])
	assert.Len(t, magic, 2)
}

func TestMagicCommand(t *testing.T) {
	assert.Equal(t, "cd '/data/local/tmp' && file *", magicCommand("/data/local/tmp"))
	assert.Equal(t, "cd '/sdcard/My Files' && file *", magicCommand("/sdcard/My Files"))

	// Metacharacters must land inside single quotes where the device shell
	// treats them as literal text.
	assert.Equal(t, `cd '/tmp/$(reboot)' && file *`, magicCommand("/tmp/$(reboot)"))
	assert.Equal(t, "cd '/tmp/`id`;ls' && file *", magicCommand("/tmp/`id`;ls"))
	assert.Equal(t, `cd '/tmp/a'\''b' && file *`, magicCommand("/tmp/a'b"))
}

func TestExtractStrings(t *testing.T) {
	data := []byte("ab\x00hello\x01world!\x02xy\x03")

	strs := ExtractStrings(data, 4)
	assert.Equal(t, []string{"hello", "world!"}, strs)
}

func TestExtractStringsMinLengthDefault(t *testing.T) {
	data := []byte("\x00abcd\x00ab\x00")
	strs := ExtractStrings(data, 0)
	assert.Equal(t, []string{"abcd"}, strs)
}

func TestExtractStringsTrailingRun(t *testing.T) {
	strs := ExtractStrings([]byte("\x00final"), 4)
	assert.Equal(t, []string{"final"}, strs)
}
