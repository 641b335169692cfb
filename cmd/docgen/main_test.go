package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/docgen/ai"
	"github.com/poiesic/docgen/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// testEnv writes a dotenv file selecting a badger store in a temp dir and
// blanks credentials so the host environment cannot enable an LLM.
func testEnv(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"STORE_BACKEND", "BADGER_PATH", "CRAWLER", "FIRECRAWL_API_KEY",
		"LLM_PROVIDER", "OPENAI_API_KEY", "OPENAI_BASE_URL", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "STORE_BACKEND=badger\nBADGER_PATH=" + filepath.Join(dir, "db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"docgen"}, args...))
	return out.String(), err
}

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	require.Failf(t, "command not found", "%s", name)
	return nil
}

func TestLogLevel(t *testing.T) {
	t.Run("invalid level is rejected", func(t *testing.T) {
		_, err := run(t, "", "--log-level", "loud", "search", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("levels are case insensitive", func(t *testing.T) {
		env := testEnv(t)
		_, err := run(t, "", "-l", "DEBUG", "--env-file", env, "setup")
		assert.NoError(t, err)
	})
}

func TestCommandFlags(t *testing.T) {
	app := newApp()

	t.Run("add source defaults to unknown", func(t *testing.T) {
		cmd := findCommand(t, app, "add")
		var sourceFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "source" {
				sourceFlag = f
			}
		}
		require.NotNil(t, sourceFlag)
		assert.Equal(t, "unknown", sourceFlag.Value)
	})

	t.Run("search limit defaults to configuration", func(t *testing.T) {
		cmd := findCommand(t, app, "search")
		var limitFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "limit" {
				limitFlag = f
			}
		}
		require.NotNil(t, limitFlag)
		assert.Zero(t, limitFlag.Value)
	})
}

func TestCommands(t *testing.T) {
	env := testEnv(t)

	out, err := run(t, "", "--env-file", env, "setup")
	require.NoError(t, err)
	assert.Contains(t, out, "Collection Document is ready (badger)")

	out, err = run(t, "", "--env-file", env, "add", "--source", "manual", "Run pip install docgen to get started.")
	require.NoError(t, err)
	assert.Contains(t, out, "Document added successfully")

	t.Run("search finds the document", func(t *testing.T) {
		out, err := run(t, "", "--env-file", env, "search", "--limit", "3", "install")
		require.NoError(t, err)
		assert.Contains(t, out, "[1] Source: manual")
		assert.Contains(t, out, "pip install docgen")
	})

	t.Run("search without match", func(t *testing.T) {
		out, err := run(t, "", "--env-file", env, "search", "kubernetes")
		require.NoError(t, err)
		assert.Contains(t, out, "No relevant documents found.")
	})

	t.Run("semantic search needs embeddings", func(t *testing.T) {
		_, err := run(t, "", "--env-file", env, "search", "--semantic", "install")
		assert.Error(t, err)
	})

	t.Run("chat routes a search", func(t *testing.T) {
		out, err := run(t, "search for install\nquit\n", "--env-file", env, "chat")
		require.NoError(t, err)
		assert.Contains(t, out, "[search]")
		assert.Contains(t, out, "pip install docgen")
	})

	t.Run("chat ends at EOF", func(t *testing.T) {
		out, err := run(t, "hello\n", "--env-file", env, "chat")
		require.NoError(t, err)
		assert.Contains(t, out, "[triage] Would you like to search")
	})

	t.Run("recreate drops documents", func(t *testing.T) {
		_, err := run(t, "", "--env-file", env, "setup", "--recreate")
		require.NoError(t, err)

		out, err := run(t, "", "--env-file", env, "search", "install")
		require.NoError(t, err)
		assert.Contains(t, out, "No relevant documents found.")
	})
}

func TestRunEval(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{"true", " TRUE\n", "true\n"},
		{"false", "false", "false\n"},
		{"anything else is false", "yes", "false\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := mock.NewMockChatModel()
			model.Answer = tt.answer

			var out bytes.Buffer
			require.NoError(t, runEval(ctx, &out, model, "system", "Is the sky blue?"))
			assert.Equal(t, tt.want, out.String())

			requests := model.Requests()
			require.Len(t, requests, 1)
			assert.Equal(t, "system", requests[0].SystemPrompt)
			assert.Equal(t, "Is the sky blue?", requests[0].UserPrompt)
		})
	}

	t.Run("model error", func(t *testing.T) {
		model := mock.NewMockChatModel()
		model.CompleteFunc = func(ctx context.Context, req ai.CompletionRequest) (string, error) {
			return "", errors.New("rate limited")
		}

		err := runEval(ctx, io.Discard, model, "system", "q")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})
}

func TestArgumentErrors(t *testing.T) {
	env := testEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"crawl needs a url", []string{"crawl"}, "url is required"},
		{"add needs content", []string{"add"}, "content is required"},
		{"search needs a query", []string{"search"}, "query is required"},
		{"crawl without firecrawl key", []string{"crawl", "https://docs.example.com"}, "crawler required"},
		{"eval needs a prompt", []string{"eval"}, "prompt is required"},
		{"eval without an LLM", []string{"eval", "Is the sky blue?"}, "eval needs an LLM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", append([]string{"--env-file", env}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("missing env file", func(t *testing.T) {
		_, err := run(t, "", "--env-file", filepath.Join(t.TempDir(), "nope.env"), "setup")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config")
	})
}
