package main

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake counter programs are shell scripts")
	}
}

// writeCounter installs an executable shell script called name in dir. The
// script runs with the thread count as $1 and dir as its working directory.
func writeCounter(t *testing.T, dir, name, body string) {
	t.Helper()
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), []byte(script), 0755))
}

// writeWellBehavedCounter installs a counter that logs its invocation and
// appends base/threads plus a fractional part to its output file.
func writeWellBehavedCounter(t *testing.T, dir, name string, base int) {
	t.Helper()
	writeCounter(t, dir, name, fmt.Sprintf(
		"echo \"%[1]s $1\" >> invocations.log\necho \"$((%[2]d / $1)).75\" >> %[1]s_data.txt",
		name, base,
	))
}

func writeConfiguration(t *testing.T, dir, content string) *Configuration {
	t.Helper()
	path := filepath.Join(dir, "counterbench.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	c, err := loadConfiguration(path)
	require.NoError(t, err)
	return c
}

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
