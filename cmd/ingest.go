package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/priyanshu2307/Newschat/config"
	"github.com/priyanshu2307/Newschat/index"
	"github.com/priyanshu2307/Newschat/ingest"
	"github.com/priyanshu2307/Newschat/news"
	"github.com/priyanshu2307/Newschat/provider/jina"
	"github.com/priyanshu2307/Newschat/tools/web_fetch"
)

func ingestCMD() *cobra.Command {
	ingestRoot := &cobra.Command{
		Use:   "ingest",
		Short: "One-shot article ingestion into the vector index",
	}

	ingestRoot.AddCommand(&cobra.Command{
		Use:   "file",
		Short: "Ingest articles from the configured data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, closeIdx, err := buildPipeline()
			if err != nil {
				return err
			}
			defer closeIdx()
			count, err := pipeline.FromFile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("ingested %d articles\n", count)
			return nil
		},
	})

	ingestRoot.AddCommand(&cobra.Command{
		Use:   "rss <feed-url>",
		Short: "Ingest articles from an RSS feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, closeIdx, err := buildPipeline()
			if err != nil {
				return err
			}
			defer closeIdx()
			count, err := pipeline.FromFeed(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("ingested %d articles\n", count)
			return nil
		},
	})

	return ingestRoot
}

func buildPipeline() (*ingest.Pipeline, func(), error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	embedder, err := jina.NewClient(cfg.Embedding.APIKey, cfg.Embedding.Model, cfg.Embedding.BaseURL, cfg.Embedding.Timeout)
	if err != nil {
		return nil, nil, err
	}
	idx, err := index.New(index.Type(cfg.Index.Type), cfg.Index.Path)
	if err != nil {
		return nil, nil, err
	}
	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Ingest.Fetcher), cfg.Ingest.FetchTimeout, cfg.Ingest.MaxChars)
	if err != nil {
		idx.Close()
		return nil, nil, err
	}
	feed := news.NewFeedClient(cfg.Ingest.FeedLimit)
	pipeline := ingest.NewPipeline(embedder, idx, feed, fetcher, cfg.Ingest.DataPath, cfg.Ingest.MinContentLength)
	return pipeline, func() { _ = idx.Close() }, nil
}
