package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"persona-chat/internal/domain"
	"persona-chat/internal/domain/model"
	"persona-chat/internal/infra/web"
	"persona-chat/internal/usecase"
)

const chatHelp = `Commands:
  /persona <name>   switch persona (keeps the conversation)
  /personas         list personas
  /new              save and start a new conversation
  /reset            discard the live conversation
  /list             list stored conversations
  /load <id|#>      open a stored conversation
  /delete <id|#>    delete a stored conversation
  /history          print the live conversation
  /quit             save and exit`

func newChatCmd() *cobra.Command {
	var persona string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				a.close(closeCtx)
			}()

			if a.cfg.Admin.Port > 0 {
				srv := web.NewServer(a.chat, a.cfg.Admin.APIKey, a.log)
				go func() {
					if err := srv.Serve(ctx, fmt.Sprintf(":%d", a.cfg.Admin.Port)); err != nil {
						a.log.Error().Err(err).Msg("admin server")
					}
				}()
			}

			r := &repl{app: a, in: os.Stdin, out: cmd.OutOrStdout()}
			if persona != "" {
				if err := r.selectPersona(ctx, persona); err != nil {
					return err
				}
			}
			return r.run(ctx)
		},
	}
	cmd.Flags().StringVarP(&persona, "persona", "p", "", "persona to start with")
	return cmd
}

// repl drives one ChatManager from line-oriented input.
type repl struct {
	app *app
	in  io.Reader
	out io.Writer

	updates <-chan usecase.ChatState
	listed  []*model.ConversationSession
}

func (r *repl) run(ctx context.Context) error {
	updates, cancel := r.app.chat.Subscribe()
	defer cancel()
	r.updates = updates

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r.in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	fmt.Fprintln(r.out, titleStyle.Render("personachat"))
	fmt.Fprintln(r.out, dimStyle.Render("Type a message, or /help for commands."))
	for {
		r.prompt()
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := r.command(ctx, line)
			if err != nil {
				r.printErr(err)
			}
			if quit {
				return nil
			}
			continue
		}
		if err := r.turn(ctx, line); err != nil && ctx.Err() != nil {
			return nil
		}
	}
}

func (r *repl) prompt() {
	fmt.Fprint(r.out, userStyle.Render("you> "))
}

func (r *repl) current() model.Persona {
	return r.app.catalog.Get(r.app.chat.Snapshot().Persona)
}

// turn sends one message and renders typing playback until it ends.
func (r *repl) turn(ctx context.Context, text string) error {
	// drop a snapshot left over from before this turn
	select {
	case <-r.updates:
	default:
	}

	done := make(chan error, 1)
	go func() { done <- r.app.chat.SendMessage(ctx, text) }()

	p := r.current()
	label := personaStyle(p).Render(p.DisplayName + ": ")
	printed, started, thinking := 0, false, false
	for {
		select {
		case st, ok := <-r.updates:
			if !ok {
				return <-done
			}
			if st.Loading && !thinking {
				thinking = true
				fmt.Fprintln(r.out, dimStyle.Render(p.DisplayName+" is typing..."))
			}
			if st.Typing {
				if !started {
					started = true
					fmt.Fprint(r.out, label)
				}
				printed += r.printFrom(st.TypingText, printed)
			}
		case err := <-done:
			st := r.app.chat.Snapshot()
			if err != nil {
				if started {
					fmt.Fprintln(r.out)
				}
				r.printErr(err)
				r.app.chat.ClearError()
				return err
			}
			if n := len(st.Messages); n > 0 && st.Messages[n-1].Role == model.RoleAssistant {
				if !started {
					fmt.Fprint(r.out, label)
				}
				r.printFrom(st.Messages[n-1].Content, printed)
			}
			fmt.Fprintln(r.out)
			return nil
		}
	}
}

// printFrom writes text after its first skip runes and reports how many
// runes it wrote.
func (r *repl) printFrom(text string, skip int) int {
	if utf8.RuneCountInString(text) <= skip {
		return 0
	}
	rest := string([]rune(text)[skip:])
	fmt.Fprint(r.out, rest)
	return utf8.RuneCountInString(rest)
}

func (r *repl) command(ctx context.Context, line string) (bool, error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	chat := r.app.chat

	switch name {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(r.out, chatHelp)
	case "/persona":
		return false, r.selectPersona(ctx, arg)
	case "/personas":
		printPersonas(r.out, r.app.catalog, chat.Snapshot().Persona)
	case "/new":
		if err := chat.StartNewChat(ctx); err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, dimStyle.Render("Started a new conversation."))
	case "/reset":
		chat.ResetConversation()
		fmt.Fprintln(r.out, dimStyle.Render("Conversation cleared."))
	case "/list":
		sessions, err := chat.ListSessions(ctx)
		if err != nil {
			return false, err
		}
		r.listed = sessions
		printSessions(r.out, sessions, chat.Snapshot().SessionID)
	case "/load":
		id, err := r.resolveSession(arg)
		if err != nil {
			return false, err
		}
		if err := chat.LoadSession(ctx, id); err != nil {
			return false, err
		}
		r.history()
	case "/delete":
		id, err := r.resolveSession(arg)
		if err != nil {
			return false, err
		}
		if err := chat.DeleteSession(ctx, id); err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, dimStyle.Render("Deleted "+id+"."))
	case "/history":
		r.history()
	default:
		return false, fmt.Errorf("unknown command %s (try /help)", name)
	}
	return false, nil
}

func (r *repl) selectPersona(ctx context.Context, name string) error {
	id, ok := r.app.catalog.Parse(name)
	if !ok {
		return fmt.Errorf("unknown persona %q (one of %s)", name, strings.Join(r.app.catalog.IDs(), ", "))
	}
	if err := r.app.chat.SelectPersona(ctx, id); err != nil {
		return err
	}
	p := r.app.catalog.Get(id)
	fmt.Fprintln(r.out, personaStyle(p).Render("Now chatting with "+p.DisplayName+"."))
	return nil
}

// resolveSession accepts a session id or a 1-based index into the last
// /list output.
func (r *repl) resolveSession(arg string) (string, error) {
	if arg == "" {
		return "", fmt.Errorf("%w: session id or list number required", domain.ErrInvalidArgument)
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(r.listed) {
			return "", fmt.Errorf("%w: no session #%d in the last /list", domain.ErrInvalidArgument, n)
		}
		return r.listed[n-1].ID, nil
	}
	return arg, nil
}

func (r *repl) history() {
	st := r.app.chat.Snapshot()
	if len(st.Messages) == 0 {
		fmt.Fprintln(r.out, dimStyle.Render("(empty conversation)"))
		return
	}
	for _, m := range st.Messages {
		if m.Role == model.RoleUser {
			fmt.Fprintln(r.out, userStyle.Render("you: ")+m.Content)
			continue
		}
		p := r.app.catalog.Get(m.Sender)
		fmt.Fprintln(r.out, personaStyle(p).Render(p.DisplayName+": ")+m.Content)
	}
}

func (r *repl) printErr(err error) {
	var adv *usecase.Advisory
	switch {
	case errors.As(err, &adv):
		fmt.Fprintln(r.out, errorStyle.Render(adv.Message))
	case errors.Is(err, domain.ErrNotFound):
		fmt.Fprintln(r.out, errorStyle.Render("No such session."))
	default:
		fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
	}
}
