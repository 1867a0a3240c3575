package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/inlimbo/core/internal/config"
	"github.com/inlimbo/core/internal/configwatch"
	"github.com/inlimbo/core/internal/engine"
	"github.com/inlimbo/core/internal/lockfile"
	"github.com/inlimbo/core/internal/logging"
	"github.com/inlimbo/core/internal/playback"
	"github.com/inlimbo/core/internal/stderr"
)

var (
	playShuffle bool
	playRepeat  string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the library from the terminal",
	Long: "Load the cached library index (scanning first if needed) and " +
		"play it start to finish, printing each track change to stdout. " +
		"Ctrl-C stops playback and exits.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlayer(cmd, false)
	},
}

func init() {
	playCmd.Flags().BoolVar(&playShuffle, "shuffle", false, "shuffle the playlist")
	playCmd.Flags().StringVar(&playRepeat, "repeat", "off", "repeat mode: off, one, all")
	rootCmd.AddCommand(playCmd)
}

func parseRepeatMode(name string) (playback.RepeatMode, error) {
	switch name {
	case "off", "":
		return playback.RepeatOff, nil
	case "one":
		return playback.RepeatOne, nil
	case "all":
		return playback.RepeatAll, nil
	}
	return playback.RepeatOff, fmt.Errorf("unknown repeat mode %q (want off, one, all)", name)
}

// session bundles the resources a player instance owns, so both `play`
// and `serve-mpris` can share the same startup and teardown sequence.
type session struct {
	logger     *logging.Logger
	lock       *lockfile.Lock
	watch      *configwatch.Watcher
	eng        *engine.Engine
	svc        *playback.Service
	stderrDone chan struct{}
}

func (s *session) Close() {
	if s.watch != nil {
		s.watch.Stop()
	}
	if s.svc != nil {
		_ = s.svc.Shutdown()
	}
	if s.stderrDone != nil {
		close(s.stderrDone)
	}
	if s.lock != nil {
		_ = s.lock.Release()
	}
	if s.logger != nil {
		_ = s.logger.Close()
	}
}

// watchStderr forwards raw C-library stderr output the engine captured
// (ALSA xrun/underrun chatter, typically) into the session log instead
// of letting it corrupt the terminal directly.
func (s *session) watchStderr() {
	for {
		select {
		case <-s.stderrDone:
			return
		case line, ok := <-stderr.Messages:
			if !ok {
				return
			}
			s.logger.Warnf("stderr: %s", line)
		}
	}
}

// startSession loads configuration and the library index, acquires the
// single-instance lockfile, starts the config-file watcher, and builds
// a ready-to-use playback.Service with the queue populated in the
// resolved sort order.
func startSession() (*session, *config.Loaded, error) {
	logger, err := logging.New()
	if err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}

	cacheDir, err := config.CacheDir()
	if err != nil {
		logger.Close()
		return nil, nil, fmt.Errorf("resolve cache dir: %w", err)
	}
	lock, err := lockfile.Acquire(filepath.Join(cacheDir, "inlimbo.lock"))
	if err != nil {
		logger.Close()
		return nil, nil, fmt.Errorf("acquire instance lock: %w", err)
	}

	loaded, err := config.Load()
	if err != nil {
		lock.Release()
		logger.Close()
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	for _, w := range loaded.Warnings {
		logger.Warnf("%s", w.String())
	}

	idx, err := loadOrBuildIndex(loaded)
	if err != nil {
		lock.Release()
		logger.Close()
		return nil, nil, fmt.Errorf("load library: %w", err)
	}

	eng := engine.New()
	svc := playback.New(eng)

	songs := orderedSongs(idx, loaded.SortPlan)
	handles := make([]playback.Handle, len(songs))
	for i, song := range songs {
		handles[i] = svc.RegisterTrack(song)
	}
	svc.AddToPlaylist(handles...)

	watch := configwatch.New(configwatchPath(), configwatch.DefaultInterval, func() {
		logger.Infof("configuration change detected; restart to apply")
	})
	watch.Start()

	logger.Infof("session %s ready: %d tracks queued", svc.SessionID(), len(handles))

	sess := &session{
		logger:     logger,
		lock:       lock,
		watch:      watch,
		eng:        eng,
		svc:        svc,
		stderrDone: make(chan struct{}),
	}
	go sess.watchStderr()
	return sess, loaded, nil
}

func configwatchPath() string {
	paths := config.Paths()
	return paths[len(paths)-1]
}

func runPlayer(cmd *cobra.Command, mpris bool) error {
	repeat, err := parseRepeatMode(playRepeat)
	if err != nil {
		return err
	}

	sess, _, err := startSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.svc.SetRepeatMode(repeat)
	sess.svc.SetShuffle(playShuffle)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var bridge *mprisBridge
	if mpris {
		bridge, err = newMprisBridge(sess.svc)
		if err != nil {
			return fmt.Errorf("start mpris bridge: %w", err)
		}
		defer bridge.Close()
	}

	sub := sess.svc.Subscribe()
	if err := sess.svc.Start(); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case tc, ok := <-sub.TrackChanged:
			if !ok {
				return nil
			}
			printTrackChange(tc)
		case ee, ok := <-sub.Error:
			if !ok {
				return nil
			}
			sess.logger.Errorf("%s %s: %v", ee.Operation, ee.Path, ee.Err)
		}
	}
}

func printTrackChange(tc playback.TrackChange) {
	if tc.Current == nil {
		fmt.Println("queue finished")
		return
	}
	dur := tc.Current.Duration.Round(time.Second)
	if tc.Current.Artist != "" {
		fmt.Printf("now playing: %s - %s (%s)\n", tc.Current.Artist, tc.Current.Title, dur)
	} else {
		fmt.Printf("now playing: %s (%s)\n", tc.Current.Title, dur)
	}
}
