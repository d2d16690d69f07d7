// Package main provides a read-only dump of the library snapshot and the
// media catalog, for debugging playback state and import results.
//
// Usage:
//
//	DATABASE_PATH=~/BookReader/bookReaderDB.db go run ./cmd/dbinspect
//	DATABASE_PATH=... CATALOG_PATH=~/BookReader/catalog go run ./cmd/dbinspect
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/bookreaderapp/bookreader-core/internal/catalog"
	"github.com/bookreaderapp/bookreader-core/internal/store/sqlite"
)

func main() {
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/BookReader/bookReaderDB.db")
	}

	st, err := sqlite.OpenSnapshot(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open library snapshot: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	fmt.Println("=== Library Snapshot ===")
	fmt.Println()

	books, err := st.ListBooks(ctx)
	if err != nil {
		log.Fatalf("Failed to list books: %v", err)
	}

	totalChapters := 0
	finishedChapters := 0

	for _, book := range books {
		chapters, err := st.ListChaptersForBook(ctx, book.ID)
		if err != nil {
			log.Printf("Error reading chapters for book %d: %v", book.ID, err)
			continue
		}
		totalChapters += len(chapters)

		fmt.Printf("Book: %s by %s (ID: %d)\n", book.Title, book.Author, book.ID)
		fmt.Printf("  Chapters: %d\n", len(chapters))

		for _, ch := range chapters {
			marker := " "
			if ch.FinishedPlaying {
				marker = "x"
				finishedChapters++
			}
			fmt.Printf("    [%s] %s (%s; %.1f min", marker, ch.FileName, ch.Title,
				float64(ch.PlayTime)/60000)
			if ch.LastPlayedPosition > 0 {
				fmt.Printf("; at %.1f min, last played %s",
					float64(ch.LastPlayedPosition)/60000,
					time.UnixMilli(ch.LastPlayedTimestamp).Format(time.DateTime))
			}
			fmt.Println(")")
		}
		fmt.Println()
	}

	fmt.Printf("Books: %d, chapters: %d, finished: %d\n", len(books), totalChapters, finishedChapters)

	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		return
	}

	fmt.Println()
	fmt.Println("=== Media Catalog ===")
	fmt.Println()

	cat, err := catalog.Open(catalogPath, nil)
	if err != nil {
		log.Fatalf("Failed to open media catalog: %v", err)
	}
	defer cat.Close()

	entries, err := cat.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list catalog entries: %v", err)
	}

	pending := 0
	for _, e := range entries {
		state := "finalized"
		if e.Pending {
			state = "PENDING"
			pending++
		}
		fmt.Printf("%s  %s%s (%s, %s)\n", e.Locator, e.RelativePath, e.DisplayName, e.MimeType, state)
	}

	fmt.Printf("\nEntries: %d, pending: %d\n", len(entries), pending)
}
