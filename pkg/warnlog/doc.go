// Package warnlog reconstructs Dawn of War II: Retribution matches from the
// game's warnings.txt diagnostic log.
//
// The log mixes engine noise with a handful of lines that describe each
// match: the mission start, every player's result, the relic match id, the
// final frame count and the mission end. ParseFile reads one snapshot of the
// log and folds those lines, in order, into a GameList of MatchRecord values.
//
// # Basic Usage
//
// To read the most recent finished match:
//
//	list, err := warnlog.ParseFile(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	match, ok := list.LatestComplete()
//	if !ok {
//	    log.Fatal("no finished match in log")
//	}
//	for _, p := range match.Players {
//	    fmt.Printf("%d team %d: %s\n", p.SteamID, p.TeamID, p.Status)
//	}
//
// The last record in a GameList may be incomplete when the game is still
// running; callers usually want LatestComplete.
//
// # Watching
//
// A Watcher follows the log while the game runs and emits each match once
// the mission has ended and the log has been quiet for the settle delay:
//
//	w, err := warnlog.NewWatcher(path, warnlog.WithSettle(5*time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	matches, errs, err := w.Watch(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for {
//	    select {
//	    case m, ok := <-matches:
//	        if !ok {
//	            return
//	        }
//	        fmt.Println("finished:", m.ID, m.Map)
//	    case err, ok := <-errs:
//	        if !ok {
//	            return
//	        }
//	        log.Printf("watch error: %v", err)
//	    }
//	}
//
// # Errors
//
// ErrLogNotFound and ErrLogTooLarge fail a parse before any line is
// examined. Decoding is lossy: bytes that are not valid text become U+FFFD,
// so ErrDecode only reports a failing decoder. A
// retained line that matches no known pattern, or more than one, fails the
// parse with a *LineError, which signals that the log format has drifted.
// Malformed numeric fields never fail a parse; they are read as 0.
package warnlog
