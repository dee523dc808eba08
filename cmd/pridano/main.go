package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/tensorplex-labs/pridano/internal/core"
	"github.com/tensorplex-labs/pridano/internal/sitegen"
	"github.com/tensorplex-labs/pridano/pkg/client"
)

const usage = `usage: pridano [--url URL] [--zstd] <command> [flags]

commands:
  generate  --brief FILE [--n N] [--scorer NAME]   generate and save a site
  edit      --html FILE --prompt TEXT [--model M] [--ollama-url URL]
  runs      [--limit N]                           list recent runs
  health                                          check the server`

func main() {
	baseURL := flag.String("url", envOr("PRIDANO_URL", "http://localhost:8000"), "server base URL")
	useZstd := flag.Bool("zstd", false, "compress requests and responses with zstd")
	timeout := flag.Duration("timeout", client.DefaultTimeout, "per request timeout")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	c, err := client.New(client.Config{BaseURL: *baseURL, Timeout: *timeout, ZstdCompression: *useZstd})
	if err != nil {
		fail(err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	args := flag.Args()[1:]
	switch flag.Arg(0) {
	case "generate":
		err = runGenerate(ctx, c, args)
	case "edit":
		err = runEdit(ctx, c, args)
	case "runs":
		err = runList(ctx, c, args)
	case "health":
		err = c.Health(ctx)
		if err == nil {
			fmt.Println("ok")
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fail(err)
	}
}

func runGenerate(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	briefPath := fs.String("brief", "", "JSON brief file, defaults apply to absent fields")
	n := fs.Int("n", sitegen.DefaultVariants, "number of variants (1-5)")
	scorer := fs.String("scorer", "", "scorer name, server default when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	brief := core.DefaultBrief()
	if *briefPath != "" {
		data, err := os.ReadFile(*briefPath)
		if err != nil {
			return err
		}
		if err := sonic.Unmarshal(data, &brief); err != nil {
			return fmt.Errorf("parse brief %s: %w", *briefPath, err)
		}
	}

	res, err := c.Generate(ctx, brief, *n, *scorer)
	if err != nil {
		return err
	}
	for _, line := range res.Log {
		fmt.Println(line)
	}
	for i, v := range res.Variants {
		fmt.Printf("  #%d %-9s score=%.3f\n", i+1, v.Source, v.Score)
	}
	fmt.Println(res.SavedAt)
	return nil
}

func runEdit(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	htmlPath := fs.String("html", "", "HTML file to edit")
	prompt := fs.String("prompt", "", "instruction")
	model := fs.String("model", "", "model name")
	ollamaURL := fs.String("ollama-url", "", "Ollama base URL")
	out := fs.String("out", "", "write the result here instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *htmlPath == "" || strings.TrimSpace(*prompt) == "" {
		return fmt.Errorf("edit needs --html and --prompt")
	}

	html, err := os.ReadFile(*htmlPath)
	if err != nil {
		return err
	}
	res, err := c.Edit(ctx, sitegen.EditRequest{HTML: string(html), Prompt: *prompt, Model: *model, OllamaURL: *ollamaURL})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, res.Log)
	if *out == "" {
		fmt.Println(res.HTML)
		return nil
	}
	return os.WriteFile(*out, []byte(res.HTML), 0o644)
}

func runList(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	limit := fs.Int("limit", 20, "how many runs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	runs, err := c.Runs(ctx, *limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%s  %-32s  %.3f  %s\n", r.CreatedAt.Local().Format(time.DateTime), r.Name, r.Score, r.Path)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
