package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ncanzani/salesdeck/internal/backend"
	"github.com/ncanzani/salesdeck/internal/config"
	"github.com/ncanzani/salesdeck/internal/history"
	"github.com/ncanzani/salesdeck/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Add catalog or document content to the knowledge index",
}

var ingestCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Ingest a product catalog from a local JSON file",
	Long: `Ingest a product catalog into the knowledge index.

The file must contain a JSON array of product objects. Item fields are
validated by the backend; the console only checks that the input parses and
is an array.

Example:
  salesdeck ingest catalog --file ./products.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			return fmt.Errorf("--file is required")
		}

		raw, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		client, cfg, err := newConsoleClient()
		if err != nil {
			return err
		}

		sub := ingest.NewSubmitter(client)
		res, err := sub.SubmitCatalog(cmd.Context(), string(raw))
		recordIngestion(cfg, "catalog", res, err)
		if err != nil {
			return friendly(err)
		}

		printSuccess("Indexed %d item(s) into %s", res.ChunksIndexed, res.Collection)
		return nil
	},
}

var ingestDocumentCmd = &cobra.Command{
	Use:   "document",
	Short: "Ingest a document already present on the backend host",
	Long: fmt.Sprintf(`Ingest a server-side document into the knowledge index.

--path is a path on the backend host, not a local file. --tag labels the
source; suggested tags: %s, or any custom text.

Example:
  salesdeck ingest document --path /srv/docs/faq.pdf --tag faq`, strings.Join(ingest.SuggestedTags, ", ")),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		tag, _ := cmd.Flags().GetString("tag")

		client, cfg, err := newConsoleClient()
		if err != nil {
			return err
		}

		sub := ingest.NewSubmitter(client)
		res, err := sub.SubmitDocument(cmd.Context(), path, tag)
		recordIngestion(cfg, "document", res, err)
		if err != nil {
			return friendly(err)
		}

		printSuccess("Indexed %d chunk(s) into %s", res.ChunksIndexed, res.Collection)
		return nil
	},
}

func init() {
	ingestCatalogCmd.Flags().String("file", "", "local JSON file with the product array")
	ingestDocumentCmd.Flags().String("path", "", "file path on the backend host")
	ingestDocumentCmd.Flags().String("tag", "docs", "source tag for the indexed chunks")
	ingestCmd.AddCommand(ingestCatalogCmd)
	ingestCmd.AddCommand(ingestDocumentCmd)
}

// recordIngestion logs the submission outcome locally. Validation failures
// are recorded too; they explain gaps an operator may wonder about later.
func recordIngestion(cfg config.Config, kind string, res backend.IngestResult, submitErr error) {
	store, err := history.Open(cfg.Storage.DataDir)
	if err != nil {
		log.Warn().Err(err).Msg("history store unavailable")
		return
	}
	defer store.Close()

	rec := history.Ingestion{
		ID:   uuid.New().String(),
		At:   time.Now(),
		Type: kind,
	}
	if submitErr != nil {
		rec.Status = "failed"
		rec.Error = backend.UserMessage(submitErr)
	} else {
		rec.Status = res.Status
		rec.Collection = res.Collection
		rec.Chunks = res.ChunksIndexed
	}
	if err := store.SaveIngestion(rec); err != nil {
		log.Warn().Err(err).Msg("recording ingestion failed")
	}
}
