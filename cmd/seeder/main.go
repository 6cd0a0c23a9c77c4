package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/archivit"
	"github.com/poiesic/archivit/repository"
)

// sample artifacts seeded into the demo archive
type seedDoc struct {
	entity   string
	name     string
	stream   bool
	filename string
	mimetype string
	content  string
	created  string
	origin   map[string]any
}

var seedDocs = []seedDoc{
	{
		entity: "acme", name: "invoices",
		filename: "Invoice 1041.pdf", mimetype: "application/pdf",
		content: "%PDF-1.7 sample invoice 1041", created: "2025-09-02T09:15:00Z",
		origin: map[string]any{"connector": "email", "from": "billing@acme.test", "subject": "September invoice"},
	},
	{
		entity: "acme", name: "invoices",
		filename: "Invoice 1042.pdf", mimetype: "application/pdf",
		content: "%PDF-1.7 sample invoice 1042", created: "2025-10-02T09:20:00Z",
		origin: map[string]any{"connector": "email", "from": "billing@acme.test", "subject": "October invoice"},
	},
	{
		entity: "acme", name: "contracts",
		filename: "MSA Draft v3.txt", mimetype: "text/plain",
		content: "Master services agreement, draft three.", created: "2025-10-14T16:00:00Z",
		origin: map[string]any{"connector": "drive"},
	},
	{
		entity: "globex", name: "reports",
		filename: "Q3 Summary.md", mimetype: "text/markdown",
		content: "# Q3 Summary\n\nRevenue up, costs flat.", created: "2025-10-20T11:30:00Z",
		origin: map[string]any{"connector": "drive", "workflow": "quarterly-reports"},
	},
	{
		entity: "acme", name: "slack/general", stream: true,
		filename: "transcript.md", mimetype: "text/markdown",
		content: "# general\n\n[09:00] alice: morning\n[09:01] bob: morning", created: "2025-11-03T09:05:00Z",
		origin: map[string]any{"connector": "slack"},
	},
	{
		entity: "globex", name: "slack/ops/alerts", stream: true,
		filename: "transcript.md", mimetype: "text/markdown",
		content: "# alerts\n\n[02:14] pager: disk usage high", created: "2025-11-04T02:20:00Z",
		origin: map[string]any{"connector": "slack"},
	},
}

var (
	basePath  = flag.String("base", "./demo_archive", "archive base directory")
	indexPath = flag.String("index", "./demo_index", "index store directory")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	a, err := archivit.Open(*basePath, *indexPath,
		archivit.WithRepositoryOptions(repository.WithManifest(true)))
	if err != nil {
		panic(err)
	}
	defer a.Close()

	ctx := context.Background()

	for _, doc := range seedDocs {
		created, err := time.Parse(time.RFC3339, doc.created)
		if err != nil {
			panic(err)
		}

		req := &repository.WriteRequest{
			Entity:           doc.entity,
			Name:             doc.name,
			Content:          []byte(doc.content),
			MimeType:         doc.mimetype,
			CreatedAt:        created,
			OriginalFilename: doc.filename,
			Origin:           doc.origin,
		}

		var res *repository.WriteResult
		if doc.stream {
			res, err = a.Writer().WriteStream(ctx, req)
		} else {
			res, err = a.Writer().WriteDocument(ctx, req)
		}
		if err != nil {
			panic(err)
		}
		slog.Info("seeded", "id", res.DocumentID, "path", res.ContentPath)
	}

	indexer, err := a.NewIndexer()
	if err != nil {
		panic(err)
	}
	defer indexer.Release()

	report, err := indexer.Run(ctx, *basePath)
	if err != nil {
		panic(err)
	}
	slog.Info("index built", "indexed", report.Indexed, "skipped", report.Skipped)
}
