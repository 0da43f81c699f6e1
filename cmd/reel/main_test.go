package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/reelrec/reel/internal/store"
)

// newTestRootCmd creates a root command with persistent flags for testing subcommands
func newTestRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use: "reel",
	}
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")
	return rootCmd
}

func TestNewVersionCmd(t *testing.T) {
	cmd := newVersionCmd()
	if cmd.Use != "version" {
		t.Errorf("Use = %q, want %q", cmd.Use, "version")
	}
}

func TestNewInitCmd(t *testing.T) {
	cmd := newInitCmd()
	if cmd.Use != "init" {
		t.Errorf("Use = %q, want %q", cmd.Use, "init")
	}
}

func TestNewBuildCmd(t *testing.T) {
	cmd := newBuildCmd()
	if cmd.Use != "build" {
		t.Errorf("Use = %q, want %q", cmd.Use, "build")
	}
	if cmd.Flags().Lookup("csv") == nil {
		t.Error("missing --csv flag")
	}
}

func TestNewRecommendCmd(t *testing.T) {
	cmd := newRecommendCmd()
	if !strings.HasPrefix(cmd.Use, "recommend") {
		t.Errorf("Use = %q, want recommend prefix", cmd.Use)
	}
	if cmd.Flags().Lookup("k") == nil {
		t.Error("missing --k flag")
	}
}

func TestNewServeCmd(t *testing.T) {
	cmd := newServeCmd()
	if cmd.Use != "serve" {
		t.Errorf("Use = %q, want %q", cmd.Use, "serve")
	}
	if cmd.Flags().Lookup("addr") == nil {
		t.Error("missing --addr flag")
	}
}

func TestInitCmdCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newInitCmd())
	rootCmd.SetArgs([]string{"init", "--root", tmpDir})
	rootCmd.SetOut(&bytes.Buffer{})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	dataDir := filepath.Join(tmpDir, store.DataDirName)
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("%s directory not created", store.DataDirName)
	}
	if _, err := os.Stat(filepath.Join(dataDir, ".gitignore")); os.IsNotExist(err) {
		t.Error(".gitignore not created")
	}
	if _, err := os.Stat(filepath.Join(dataDir, "reel.yaml")); os.IsNotExist(err) {
		t.Error("reel.yaml not created")
	}
}

func TestRecommendCmdRequiresInit(t *testing.T) {
	tmpDir := t.TempDir()

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newRecommendCmd())
	rootCmd.SetArgs([]string{"recommend", "Some Movie", "--root", tmpDir})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error when data directory missing")
	}
	if !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("expected 'not initialized' error, got: %v", err)
	}
}

func TestBuildAndRecommendEndToEnd(t *testing.T) {
	tmpDir := t.TempDir()

	csvPath := filepath.Join(tmpDir, "movies.csv")
	csv := `movie_id,title,genres,cast,directors,keywords
1,Title A,Action,Tom Hanks,Jane Director,heist
2,Title B,Action,Tom Hanks,Jane Director,heist
3,Title C,Drama,Jane Doe,Bob Director,romance
`
	if err := os.WriteFile(csvPath, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.SetArgs([]string{"build", "--csv", csvPath, "--root", tmpDir})
	rootCmd.SetOut(&bytes.Buffer{})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, store.DataDirName, store.DBFileName)); os.IsNotExist(err) {
		t.Fatal("database not created by build")
	}

	rootCmd2 := newTestRootCmd()
	rootCmd2.AddCommand(newRecommendCmd())
	rootCmd2.SetArgs([]string{"recommend", "Title A", "-k", "2", "--root", tmpDir})
	rootCmd2.SetOut(&bytes.Buffer{})
	if err := rootCmd2.Execute(); err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
}

func TestRecommendCmdUnknownTitle(t *testing.T) {
	tmpDir := t.TempDir()

	csvPath := filepath.Join(tmpDir, "movies.csv")
	csv := `movie_id,title,genres,cast,directors,keywords
1,Title A,Action,Tom Hanks,,
2,Title B,Action,Tom Hanks,,
`
	if err := os.WriteFile(csvPath, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.SetArgs([]string{"build", "--csv", csvPath, "--root", tmpDir})
	rootCmd.SetOut(&bytes.Buffer{})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	rootCmd2 := newTestRootCmd()
	rootCmd2.AddCommand(newRecommendCmd())
	rootCmd2.SetArgs([]string{"recommend", "No Such Movie", "--root", tmpDir})
	rootCmd2.SetOut(&bytes.Buffer{})
	rootCmd2.SetErr(&bytes.Buffer{})
	err := rootCmd2.Execute()
	if err == nil {
		t.Fatal("expected error for unknown title")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected 'not found' error, got: %v", err)
	}
}
