package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/stretchr/testify/suite"
)

// CommandTestSuite provides command execution helpers.
// All cmd/blekbd test suites embed it.
type CommandTestSuite struct {
	suite.Suite
}

// ExecuteCommand runs a fresh command tree with args, returns output and error.
func (s *CommandTestSuite) ExecuteCommand(args ...string) (string, error) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// WriteConfig writes a YAML configuration file and returns its path.
func (s *CommandTestSuite) WriteConfig(content string) string {
	path := filepath.Join(s.T().TempDir(), "blekbd.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600), "config write MUST succeed")
	return path
}
