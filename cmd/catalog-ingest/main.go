// Command catalog-ingest bulk-loads gzipped JSONL product exports into the
// catalog. Supplier feeds overlap heavily, so a bloom filter screens out
// product names already ingested in this run before they hit the database.
// The filter's false positive rate means a new product is very occasionally
// skipped; the next feed run picks it up.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/arkadiv/storefront/internal/repository"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

// feedRecord is one line of a supplier JSONL export.
type feedRecord struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Color       string          `json:"color"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
}

func (r feedRecord) valid() bool {
	return r.Name != "" && r.Category != "" && !r.Price.IsNegative()
}

// fileResult holds the usable records parsed from a single feed file.
type fileResult struct {
	records []feedRecord
	skipped uint64
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz product feeds")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz files in %s", dataDir)
	}
	sort.Strings(files)

	slog.Info("parsing feeds", slog.Int("files", len(files)))

	results, err := parseFeeds(ctx, files)
	if err != nil {
		return errors.Wrap(err, "parse feeds")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return upsertRecords(ctx, pool, files, results)
}

// parseFeeds streams and parses all feed files concurrently.
func parseFeeds(ctx context.Context, files []string) ([]fileResult, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(parseFeedFile(ctx, i, f, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func parseFeedFile(ctx context.Context, idx int, path string, results []fileResult) func() error {
	return func() error {
		var res fileResult
		var count uint64

		if err := streamGzFile(ctx, path, func(line []byte) {
			count++
			if count%progressEvery == 0 {
				slog.Info("parse progress",
					slog.String("file", filepath.Base(path)),
					slog.Uint64("lines", count),
				)
			}

			var rec feedRecord
			if err := json.Unmarshal(line, &rec); err != nil || !rec.valid() {
				res.skipped++
				return
			}
			res.records = append(res.records, rec)
		}); err != nil {
			return errors.Wrapf(err, "parse feed %s", path)
		}

		slog.Info("parse complete",
			slog.String("file", filepath.Base(path)),
			slog.Uint64("lines", count),
			slog.Int("records", len(res.records)),
			slog.Uint64("skipped", res.skipped),
		)

		results[idx] = res
		return nil
	}
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line []byte)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Bytes())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// upsertRecords walks the parsed feeds in file order, deduplicating by
// product name across files. Earlier feeds win: a name already added to the
// filter is not written again.
func upsertRecords(ctx context.Context, pool *pgxpool.Pool, files []string, results []fileResult) error {
	const upsertCategory = `
		INSERT INTO categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`
	const upsertProduct = `
		INSERT INTO products (name, description, price, color, image, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			price       = EXCLUDED.price,
			color       = EXCLUDED.color,
			image       = EXCLUDED.image,
			category_id = EXCLUDED.category_id`

	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	categoryIDs := make(map[string]int64)

	var written, duplicates uint64
	for i, res := range results {
		for _, rec := range res.records {
			if seen.TestAndAddString(rec.Name) {
				duplicates++
				continue
			}

			categoryID, ok := categoryIDs[rec.Category]
			if !ok {
				if err := pool.QueryRow(ctx, upsertCategory, rec.Category).Scan(&categoryID); err != nil {
					return errors.Wrapf(err, "upsert category %s", rec.Category)
				}
				categoryIDs[rec.Category] = categoryID
			}

			if _, err := pool.Exec(ctx, upsertProduct,
				rec.Name, rec.Description, rec.Price, rec.Color, rec.Image, categoryID,
			); err != nil {
				return errors.Wrapf(err, "upsert product %s", rec.Name)
			}
			written++
		}

		slog.Info("feed ingested",
			slog.String("file", filepath.Base(files[i])),
			slog.Uint64("written_so_far", written),
		)
	}

	slog.Info("ingest summary",
		slog.Uint64("written", written),
		slog.Uint64("duplicates", duplicates),
		slog.Int("categories", len(categoryIDs)),
	)

	return nil
}
