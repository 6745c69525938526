package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"blog_writer_agent/config"
	"blog_writer_agent/generator"
	"blog_writer_agent/imagegen"
	"blog_writer_agent/publisher"
	"blog_writer_agent/server"
	"blog_writer_agent/workspace"
)

var verbose bool

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	configPath := flag.String("config", "config/config.json", "path to config.json")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	publishID := flag.String("publish", "", "publish the workspace record with this id")
	list := flag.Bool("list", false, "list workspace records and exit")
	listStatus := flag.String("status", "", "with --list, only show records in this status")
	flag.BoolVar(&verbose, "v", false, "enable info logs")
	flag.Parse()

	// Load .env for API keys
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Listing needs only the workspace client.
	if *list {
		ws, err := workspace.New(cfg.Workspace, nil, verbose, log.Default())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		refs, err := ws.QueryRecords(context.Background(), generator.Status(*listStatus))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, ref := range refs {
			fmt.Printf("%s\t%s\t%s\n", ref.ID, ref.Status, ref.Title)
		}
		return
	}

	agent, err := buildAgent(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Web server mode
	if *serve {
		srv, err := server.New(agent, log.Default())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8080"
		}
		log.Printf("Starting web server on %s", listen)
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx := context.Background()

	if *publishID != "" {
		log.Printf("[cli] publishing record=%s", *publishID)
		resp, err := agent.PublishBlog(ctx, *publishID)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		log.Printf("[cli] publish done record=%s", *publishID)
		fmt.Println(string(resp))
		return
	}

	// Default: one batch run from the command line.
	log.Printf("[cli] generating blog drafts")
	results, err := agent.GenerateBatch(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	failed := 0
	for _, res := range results {
		if res.Succeeded() {
			fmt.Printf("drafted\t%s\t%s\n", res.RecordID, res.Title)
		} else {
			failed++
			fmt.Fprintf(os.Stderr, "failed\t%s\t%v\n", res.Title, res.Err)
		}
	}
	log.Printf("[cli] batch done: %d/%d topics drafted", len(results)-failed, len(results))
	if len(results) > 0 && failed == len(results) {
		os.Exit(1)
	}
}

func buildAgent(cfg config.Config) (*generator.Agent, error) {
	llm, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	model, err := generator.NewModelClient(llm)
	if err != nil {
		return nil, err
	}
	ws, err := workspace.New(cfg.Workspace, nil, verbose, log.Default())
	if err != nil {
		return nil, err
	}
	uploader, err := imagegen.NewHTTPUploader(cfg.Storage, nil)
	if err != nil {
		return nil, err
	}
	images, err := imagegen.NewGenerator(cfg.Image, uploader, nil, verbose, log.Default())
	if err != nil {
		return nil, err
	}
	blog, err := publisher.New(cfg.Blog, nil, verbose, log.Default())
	if err != nil {
		return nil, err
	}
	return generator.NewAgent(model, ws, images, blog, verbose, log.Default())
}

func buildLLM(cfg config.Config) (generator.LLMClient, error) {
	if cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("llm config missing; please set llm.provider/model/api_key in config")
	}
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(&cfg.LLM)
	case "openai-compatible":
		// Any OpenAI-compatible gateway works as long as base_url points at it.
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider openai-compatible requires base_url")
		}
		return generator.NewOpenAILLMFromConfig(&cfg.LLM)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}
