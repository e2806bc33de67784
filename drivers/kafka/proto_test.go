package kafka

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProtoSource = `syntax = "proto3";
package test;

message Event {
  string id = 1;
  string kind = 2;
}
`

func writeProtoFile(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "event.proto")
	require.NoError(t, os.WriteFile(path, []byte(testProtoSource), 0o644))
	return path
}

func TestLoadMessageDescriptor_FindsBareMessageName(t *testing.T) {
	path := writeProtoFile(t)
	md, err := loadMessageDescriptor(path, "Event")
	require.NoError(t, err)
	assert.Equal(t, "Event", md.GetName())
}

func TestLoadMessageDescriptor_FindsFullyQualifiedName(t *testing.T) {
	path := writeProtoFile(t)
	md, err := loadMessageDescriptor(path, "test.Event")
	require.NoError(t, err)
	assert.Equal(t, "Event", md.GetName())
}

func TestLoadMessageDescriptor_ErrorsOnUnknownMessage(t *testing.T) {
	path := writeProtoFile(t)
	_, err := loadMessageDescriptor(path, "DoesNotExist")
	assert.Error(t, err)
}

func TestLoadMessageDescriptor_ErrorsOnUnparsableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.proto")
	require.NoError(t, os.WriteFile(path, []byte("not a proto file"), 0o644))

	_, err := loadMessageDescriptor(path, "Event")
	assert.Error(t, err)
}
