package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/hitoshi/linkvault/internal/client"
	"github.com/hitoshi/linkvault/internal/config"
	"github.com/hitoshi/linkvault/internal/logger"
)

// errUsage はクライアントの引数が不正な場合に返す。
var errUsage = errors.New("invalid client usage")

// clientCommand はクライアントのサブコマンド1つ分の定義。
type clientCommand struct {
	usage string
	// noResume は保存済みセッションを復元せずに実行することを示す。
	noResume bool
	run   func(ctx context.Context, a *client.App, w io.Writer, fs *flag.FlagSet, args []string) error
}

var clientCommands = map[string]clientCommand{
	"register": {
		usage:    "register -email EMAIL -password PASSWORD",
		noResume: true,
		run: func(ctx context.Context, a *client.App, _ io.Writer, fs *flag.FlagSet, args []string) error {
			email := fs.String("email", "", "email address")
			password := fs.String("password", "", "password")
			if err := fs.Parse(args); err != nil {
				return errUsage
			}
			return a.Dispatch(ctx, client.Command{Kind: client.CmdRegister, Email: *email, Password: *password})
		},
	},
	"login": {
		usage:    "login -email EMAIL -password PASSWORD",
		noResume: true,
		run: func(ctx context.Context, a *client.App, _ io.Writer, fs *flag.FlagSet, args []string) error {
			email := fs.String("email", "", "email address")
			password := fs.String("password", "", "password")
			if err := fs.Parse(args); err != nil {
				return errUsage
			}
			return a.Dispatch(ctx, client.Command{Kind: client.CmdLogin, Email: *email, Password: *password})
		},
	},
	"logout": {
		usage:    "logout",
		noResume: true,
		run: func(ctx context.Context, a *client.App, _ io.Writer, _ *flag.FlagSet, _ []string) error {
			return a.Dispatch(ctx, client.Command{Kind: client.CmdLogout})
		},
	},
	"list": {
		usage: "list [-format text|html] [-edit-collection ID -edit-link LINK_ID]",
		run:   runRender,
	},
	"render": {
		usage: "render [-format text|html] [-edit-collection ID -edit-link LINK_ID]",
		run:   runRender,
	},
	"create": {
		usage: "create -title TITLE",
		run: func(ctx context.Context, a *client.App, _ io.Writer, fs *flag.FlagSet, args []string) error {
			title := fs.String("title", "", "collection title")
			if err := fs.Parse(args); err != nil {
				return errUsage
			}
			return a.Dispatch(ctx, client.Command{Kind: client.CmdCreateCollection, Title: *title})
		},
	},
	"delete": {
		usage: "delete -id COLLECTION_ID",
		run: func(ctx context.Context, a *client.App, _ io.Writer, fs *flag.FlagSet, args []string) error {
			id := fs.String("id", "", "collection id")
			if err := fs.Parse(args); err != nil || *id == "" {
				return errUsage
			}
			return a.Dispatch(ctx, client.Command{Kind: client.CmdDeleteCollection, CollectionID: *id})
		},
	},
	"add-link": {
		usage: "add-link -id COLLECTION_ID -name NAME -url URL",
		run: func(ctx context.Context, a *client.App, _ io.Writer, fs *flag.FlagSet, args []string) error {
			id := fs.String("id", "", "collection id")
			name := fs.String("name", "", "link name")
			url := fs.String("url", "", "link url")
			if err := fs.Parse(args); err != nil || *id == "" {
				return errUsage
			}
			return a.Dispatch(ctx, client.Command{Kind: client.CmdAddLink, CollectionID: *id, Name: *name, URL: *url})
		},
	},
	"update-link": {
		usage: "update-link -id COLLECTION_ID -link LINK_ID -name NAME -url URL",
		run: func(ctx context.Context, a *client.App, _ io.Writer, fs *flag.FlagSet, args []string) error {
			id := fs.String("id", "", "collection id")
			linkID := fs.Int("link", 0, "link id")
			name := fs.String("name", "", "link name")
			url := fs.String("url", "", "link url")
			if err := fs.Parse(args); err != nil || *id == "" {
				return errUsage
			}
			if err := a.Dispatch(ctx, client.Command{Kind: client.CmdStartEdit, CollectionID: *id, LinkID: *linkID}); err != nil {
				return err
			}
			return a.Dispatch(ctx, client.Command{Kind: client.CmdUpdateLink, CollectionID: *id, LinkID: *linkID, Name: *name, URL: *url})
		},
	},
	"remove-link": {
		usage: "remove-link -id COLLECTION_ID -link LINK_ID",
		run: func(ctx context.Context, a *client.App, _ io.Writer, fs *flag.FlagSet, args []string) error {
			id := fs.String("id", "", "collection id")
			linkID := fs.Int("link", 0, "link id")
			if err := fs.Parse(args); err != nil || *id == "" {
				return errUsage
			}
			return a.Dispatch(ctx, client.Command{Kind: client.CmdRemoveLink, CollectionID: *id, LinkID: *linkID})
		},
	},
	"export": {
		usage: "export [-o FILE]  (\"-\" writes to stdout)",
		run: func(ctx context.Context, a *client.App, w io.Writer, fs *flag.FlagSet, args []string) error {
			out := fs.String("o", client.ExportFileName(time.Now()), "output file")
			if err := fs.Parse(args); err != nil {
				return errUsage
			}
			if !a.State().LoggedIn() {
				return a.Dispatch(ctx, client.Command{Kind: client.CmdRefresh})
			}
			if *out == "-" {
				return a.Dispatch(ctx, client.Command{Kind: client.CmdExport, Out: w})
			}

			f, err := os.Create(*out)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			if err := a.Dispatch(ctx, client.Command{Kind: client.CmdExport, Out: f}); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	},
	"import": {
		usage: "import -f FILE",
		run: func(ctx context.Context, a *client.App, _ io.Writer, fs *flag.FlagSet, args []string) error {
			file := fs.String("f", "", "JSON file produced by export")
			if err := fs.Parse(args); err != nil || *file == "" {
				return errUsage
			}
			f, err := os.Open(*file)
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()
			return a.Dispatch(ctx, client.Command{Kind: client.CmdImport, In: f})
		},
	},
}

// runRender はコレクション一覧を表示する。編集対象を指定すると編集フォームとして描画する。
func runRender(ctx context.Context, a *client.App, w io.Writer, fs *flag.FlagSet, args []string) error {
	format := fs.String("format", "text", "output format (text or html)")
	editCollection := fs.String("edit-collection", "", "collection id of the link being edited")
	editLink := fs.Int("edit-link", 0, "id of the link being edited")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *format != "text" && *format != "html" {
		return errUsage
	}

	if !a.State().LoggedIn() {
		return a.Dispatch(ctx, client.Command{Kind: client.CmdRefresh})
	}
	if *editCollection != "" {
		if err := a.Dispatch(ctx, client.Command{Kind: client.CmdStartEdit, CollectionID: *editCollection, LinkID: *editLink}); err != nil {
			return err
		}
	}

	renderer := client.NewRenderer()
	if *format == "html" {
		html, err := renderer.RenderHTML(a.State())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, html)
		return err
	}
	return renderer.RenderText(w, a.State())
}

// runClient はコマンドラインクライアントのサブコマンドを実行する。
// セッションはファイルに保存し、コマンド間で引き継ぐ。
func runClient(ctx context.Context, w io.Writer, args []string) error {
	if len(args) == 0 {
		printClientUsage(w)
		return errUsage
	}
	cmd, ok := clientCommands[args[0]]
	if !ok {
		printClientUsage(w)
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	cfg := config.LoadClient()
	log := logger.New(os.Stderr, slog.LevelWarn)
	api := client.NewClient(cfg.APIURL, &http.Client{Timeout: cfg.Timeout})
	a := client.NewApp(api, client.NewFileSessionStore(cfg.SessionFile), client.NewNotifier(w), log)

	if !cmd.noResume {
		if err := a.Resume(ctx); err != nil {
			return err
		}
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(w)
	if err := cmd.run(ctx, a, w, fs, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(w, "usage: linkvault client %s\n", cmd.usage)
		}
		return err
	}
	return nil
}

func printClientUsage(w io.Writer) {
	names := make([]string, 0, len(clientCommands))
	for name := range clientCommands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: linkvault client <command> [flags]")
	fmt.Fprintln(w, "commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", clientCommands[name].usage)
	}
}
