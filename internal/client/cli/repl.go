package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the command surface the REPL dispatches to. The real App
// satisfies it; tests can provide a lightweight stub. Handlers report their
// own errors, the loop only keeps going.
type execIface interface {
	Sync(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	AddBook(ctx context.Context, args []string) error
	Books(ctx context.Context, args []string) error
	Read(ctx context.Context, args []string) error
	Finish(ctx context.Context, args []string) error
	Study(ctx context.Context, args []string) error
	Activities(ctx context.Context, args []string) error
	Food(ctx context.Context, args []string) error
	Foods(ctx context.Context, args []string) error
	Meal(ctx context.Context, args []string) error
	Meals(ctx context.Context, args []string) error
	Sport(ctx context.Context, args []string) error
	Weight(ctx context.Context, args []string) error
	Weights(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  sync                                   synchronize now
  status                                 show sync status
  addbook <title>                        start tracking a book
  books [query]                          list books (query searches in-progress ones)
  read <bookId> <minutes> [date=]        log a reading session for a book
  finish <bookId> | reopen <bookId>      mark a book completed or in progress
  study <type> <minutes> [cards=] [book=] [date=]
                                         log flashcards|reading|watching|listening
  activities [date|type]                 list study sessions
  food                                   add a food (interactive)
  foods                                  list foods
  meal <foodId> <mealType> <grams> [date=]
  meals [date]                           meals and macros of a day
  sport <type> <minutes> [km=] [training=] [date=]
  weight <kg> [date]                     record weight (one entry per date)
  weights                                list weight entries
  delete <table> <id>                    delete a record (books, activities, foods, meals, sports, weights)
  exit | quit                            leave the program`

// runREPL reads commands from reader until EOF or "exit"/"quit" and
// dispatches them to a.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "lifesync %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help", "?":
			fmt.Fprintln(w, helpText)
		case "sync":
			_ = a.Sync(ctx, args)
		case "status":
			_ = a.Status(ctx, args)
		case "addbook":
			_ = a.AddBook(ctx, args)
		case "books":
			_ = a.Books(ctx, args)
		case "read":
			_ = a.Read(ctx, args)
		case "finish":
			_ = a.Finish(ctx, append([]string{"done"}, args...))
		case "reopen":
			_ = a.Finish(ctx, append([]string{"reopen"}, args...))
		case "study":
			_ = a.Study(ctx, args)
		case "activities":
			_ = a.Activities(ctx, args)
		case "food":
			_ = a.Food(ctx, args)
		case "foods":
			_ = a.Foods(ctx, args)
		case "meal":
			_ = a.Meal(ctx, args)
		case "meals":
			_ = a.Meals(ctx, args)
		case "sport":
			_ = a.Sport(ctx, args)
		case "weight":
			_ = a.Weight(ctx, args)
		case "weights":
			_ = a.Weights(ctx, args)
		case "delete":
			_ = a.Delete(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
