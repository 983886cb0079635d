package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tunequiz/client/internal/audio"
	"github.com/tunequiz/client/internal/audio/beepengine"
	"github.com/tunequiz/client/internal/config"
	"github.com/tunequiz/client/internal/identity"
	"github.com/tunequiz/client/internal/protocol"
	"github.com/tunequiz/client/internal/roomapi"
	"github.com/tunequiz/client/internal/scoreboard"
	"github.com/tunequiz/client/internal/session"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	configPath := flag.String("config", "", "path to YAML config file")
	server := flag.String("server", "", "game server base URL (overrides config)")
	name := flag.String("name", "", "display name; creates a new identity when none is stored")
	room := flag.String("room", "", "room id to join")
	create := flag.Bool("create", false, "create a new room")
	search := flag.String("search", "", "search playlists")
	playlist := flag.String("playlist", "", "start a game from this playlist id (with -room)")
	questions := flag.Int("questions", 0, "number of questions (0 keeps the server default)")
	restart := flag.Bool("restart", false, "restart an ended game (with -room)")
	reset := flag.Bool("reset", false, "reset a room to the lobby (with -room)")
	mute := flag.Bool("mute", false, "run without audio output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *server != "" {
		cfg.ServerURL = *server
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	store := identity.NewFileStore(cfg.IdentityPath)
	ident, ok := store.Identity()
	if !ok {
		if *name == "" {
			log.Fatal().Msg("no identity stored; run with -name to create one")
		}
		ident, err = store.Create(*name)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create identity")
		}
		log.Info().Str("name", ident.Name).Str("id", ident.ID).Msg("identity created")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := roomapi.NewClient(cfg.ServerURL)

	switch {
	case *create:
		roomID, err := api.CreateRoom(ctx, ident.ID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create room")
		}
		fmt.Println(roomID)

	case *search != "":
		playlists, err := api.SearchPlaylists(ctx, *search)
		if err != nil {
			log.Fatal().Err(err).Msg("playlist search failed")
		}
		for _, p := range playlists {
			fmt.Printf("%s\t%s (%s)\n", p.ID, p.Name, p.Owner.DisplayName)
		}

	case *playlist != "":
		requireRoom(*room)
		types := []string{string(protocol.QuestionTypeSong), string(protocol.QuestionTypeArtist)}
		if err := api.NewGame(ctx, *room, ident.ID, *playlist, *questions, types); err != nil {
			log.Fatal().Err(err).Msg("failed to start game")
		}

	case *restart:
		requireRoom(*room)
		if err := api.RestartGame(ctx, *room, ident.ID); err != nil {
			log.Fatal().Err(err).Msg("failed to restart game")
		}

	case *reset:
		requireRoom(*room)
		if err := api.ResetRoom(ctx, *room, ident.ID); err != nil {
			log.Fatal().Err(err).Msg("failed to reset room")
		}

	default:
		requireRoom(*room)
		if err := play(ctx, cfg, *room, ident, *mute); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("session ended with error")
		}
	}
}

func requireRoom(room string) {
	if room == "" {
		log.Fatal().Msg("-room is required")
	}
}

// play joins a room and drives the interactive loop: digits 1-4 submit
// an answer, "r" retries blocked audio, "q" quits.
func play(ctx context.Context, cfg config.Config, room string, ident identity.Identity, mute bool) error {
	clock := clockwork.NewRealClock()

	var engine audio.Engine
	if mute {
		engine = audio.NewNopEngine(clock)
	} else {
		var err error
		engine, err = beepengine.New(cfg.Volume)
		if err != nil {
			log.Warn().Err(err).Msg("audio unavailable, continuing muted")
			engine = audio.NewNopEngine(clock)
		}
	}

	sess, err := session.Join(ctx, cfg.ServerURL, room, identity.Static{Value: ident}, engine, clock)
	if err != nil {
		return err
	}
	defer sess.Close()

	runErr := make(chan error, 1)
	go func() {
		runErr <- sess.Run(ctx)
	}()

	lines := make(chan string)
	go readLines(lines)

	var lastPhase session.Phase
	var lastAudio audio.State
	lastQuestion := -1
	quit := false

	for {
		select {
		case err := <-runErr:
			if quit {
				return nil
			}
			return err

		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			switch {
			case line == "q":
				quit = true
				sess.Close()
			case line == "r":
				if err := sess.RetryAudio(); err != nil {
					log.Warn().Err(err).Msg("audio retry failed")
				}
			default:
				n, err := strconv.Atoi(line)
				if err != nil || n < 1 {
					fmt.Println("enter a choice number, r to retry audio, q to quit")
					continue
				}
				if err := sess.Submit(n - 1); err != nil {
					log.Warn().Err(err).Msg("submission rejected")
				}
			}

		case u := <-sess.Updates():
			if u.Audio == audio.StateBlocked && lastAudio != audio.StateBlocked {
				fmt.Println("audio blocked; press r to retry")
			}
			lastAudio = u.Audio
			render(u, &lastPhase, &lastQuestion)
		}
	}
}

func render(u session.Update, lastPhase *session.Phase, lastQuestion *int) {
	if u.Progress != nil {
		return // progress samples drive a UI bar; nothing to print here
	}

	newPhase := u.Phase != *lastPhase
	newQuestion := u.Phase == session.PhasePlaying && u.QuestionID != *lastQuestion
	*lastPhase = u.Phase
	if !newPhase && !newQuestion {
		return
	}

	switch u.Phase {
	case session.PhaseWaitingForGame:
		fmt.Println("-- lobby --")
		for _, row := range u.Board {
			fmt.Printf("  %s\n", row.Name)
		}

	case session.PhasePlaying:
		if !newQuestion {
			return
		}
		*lastQuestion = u.QuestionID
		fmt.Printf("-- question %d --\n", u.QuestionID+1)
		if u.Question != nil {
			fmt.Printf("guess the %s:\n", strings.ToLower(string(u.Question.Type)))
			for i, choice := range u.Question.Choices {
				fmt.Printf("  %d) %s\n", i+1, choice)
			}
		}
	case session.PhaseWaitingForNextQuestion:
		fmt.Printf("-- answer: %s --\n", u.Answer)
		printBoard(u.Board)

	case session.PhaseEnded:
		fmt.Println("-- final scoreboard --")
		printBoard(u.Board)

	case session.PhaseDisconnected:
		fmt.Println("-- disconnected --")
	}
}

func printBoard(rows []scoreboard.Row) {
	for _, row := range rows {
		if row.HasBonus {
			fmt.Printf("  %s: %d (+%d, %.1fs)\n", row.Name, row.Score, row.Bonus, float64(row.SubmittedAtMS)/1000)
			continue
		}
		fmt.Printf("  %s: %d\n", row.Name, row.Score)
	}
}

func readLines(out chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			out <- line
		}
	}
	close(out)
}
