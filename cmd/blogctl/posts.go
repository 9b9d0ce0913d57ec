package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/Albion-ops/bytewave-hub/internal/client"
	"github.com/Albion-ops/bytewave-hub/internal/listing"
)

const postsHelp = `Commands: n next page, p previous page, <number> go to page,
/<text> search (empty clears), c <slug> category (empty for all), r refresh, q quit`

func runPosts(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("posts", pflag.ContinueOnError)
	server := flagSet.String("server", "http://localhost:8080", "base URL of the bytewave-hub server")
	search := flagSet.String("q", "", "search text")
	category := flagSet.String("category", listing.AllCategories, "category slug")
	page := flagSet.Int("page", 1, "page to open")
	interactive := flagSet.BoolP("interactive", "i", false, "read navigation commands from stdin")
	plain := flagSet.Bool("plain", false, "disable styling")
	timeout := flagSet.Duration("timeout", 10*time.Second, "request timeout")
	flagSet.Usage = func() {
		fmt.Fprintln(stdout, "Usage: blogctl posts [--server URL] [--q TEXT] [--category SLUG] [--page N] [-i]")
		flagSet.PrintDefaults()
	}
	if done, err := parseFlags(flagSet, args, stdout); done || err != nil {
		return err
	}

	c, err := client.New(*server, *timeout)
	if err != nil {
		return err
	}

	initial := listing.State{Search: strings.TrimSpace(*search), Category: *category, Page: *page}
	controller := listing.NewController(c, initial)
	view := newView(stdout, *plain)

	if err := controller.Refresh(ctx); err != nil {
		return err
	}
	if !*interactive {
		view.render(controller.Page(), "")
		return nil
	}

	view.clear()
	view.render(controller.Page(), postsHelp)

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		quit, status := navigate(ctx, controller, scanner.Text())
		if quit {
			return nil
		}
		view.clear()
		view.render(controller.Page(), status)
	}
	return scanner.Err()
}

// navigate applies one command line to the controller and returns a status
// message for the footer.
func navigate(ctx context.Context, controller *listing.Controller, line string) (quit bool, status string) {
	line = strings.TrimSpace(line)
	current := controller.State().Page

	var err error
	moved := true
	switch {
	case line == "q":
		return true, ""
	case line == "n":
		moved, err = controller.GoToPage(ctx, current+1)
	case line == "p":
		moved, err = controller.GoToPage(ctx, current-1)
	case line == "r":
		err = controller.Refresh(ctx)
	case strings.HasPrefix(line, "/"):
		err = controller.SetSearch(ctx, strings.TrimPrefix(line, "/"))
	case line == "c" || strings.HasPrefix(line, "c "):
		err = controller.SetCategory(ctx, strings.TrimPrefix(line, "c"))
	default:
		n, convErr := strconv.Atoi(line)
		if convErr != nil {
			return false, postsHelp
		}
		moved, err = controller.GoToPage(ctx, n)
	}

	switch {
	case errors.Is(err, listing.ErrSuperseded):
		return false, ""
	case err != nil:
		return false, "Failed to load posts: " + err.Error()
	case !moved:
		return false, "No such page"
	}
	return false, ""
}
