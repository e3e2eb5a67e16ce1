//go:build windows

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"

	"github.com/ohto-ai/window-mod/console"
	"github.com/ohto-ai/window-mod/injector"
	"github.com/ohto-ai/window-mod/shared"
	"github.com/ohto-ai/window-mod/store"
	"github.com/ohto-ai/window-mod/winutil"
)

// app wires the injector and the optional state database for one command
// invocation.
type app struct {
	inj *injector.Injector
	st  *store.Store
}

func newApp() (*app, error) {
	var opts []injector.Option
	if artifactDirFlag != "" {
		opts = append(opts, injector.WithArtifactDir(artifactDirFlag))
	}
	inj, err := injector.New(opts...)
	if err != nil {
		return nil, err
	}

	a := &app{inj: inj}
	if !noDBFlag {
		st, err := store.Open(defaultDBPath())
		if err != nil {
			// A broken database should not block window operations.
			logrus.WithError(err).Warn("state database unavailable, continuing without persistence")
		} else {
			a.st = st
		}
	}

	// --auto-unload given on the command line becomes the new persisted
	// preference; otherwise the stored preference applies.
	if a.st != nil {
		if autoUnloadSet {
			a.st.SetSetting("auto_unload", strconv.FormatBool(autoUnloadFlag))
		} else {
			v, _ := a.st.GetSetting("auto_unload", "false")
			autoUnloadFlag = v == "true"
		}
	}
	return a, nil
}

func (a *app) close() {
	if a.st != nil {
		a.st.Close()
	}
}

// resolveTarget enumerates the current windows and picks the one the operator
// named. One-shot commands have no prior listing, so numeric targets index
// the enumeration order shown by `list`.
func (a *app) resolveTarget(args []string) (winutil.WindowInfo, error) {
	list, err := winutil.EnumerateWindows(0)
	if err != nil {
		return winutil.WindowInfo{}, fmt.Errorf("enumerate windows: %w", err)
	}
	return console.ResolveTarget(list, strings.Join(args, " "))
}

func (a *app) record(w winutil.WindowInfo, op string, success bool, detail string) {
	if a.st == nil {
		return
	}
	err := a.st.RecordOperation(&store.OperationRecord{
		Handle:      uint64(w.Handle),
		Title:       w.Title,
		ProcessName: w.ProcessName,
		Operation:   op,
		Success:     success,
		Detail:      detail,
	})
	if err != nil {
		logrus.WithError(err).Debug("failed to record operation")
	}
}

func runList() error {
	list, err := winutil.EnumerateWindows(0)
	if err != nil {
		return err
	}
	for i, w := range list {
		var flags []string
		if w.Excluded {
			flags = append(flags, "capture-excluded")
		}
		if w.TopMost {
			flags = append(flags, "topmost")
		}
		suffix := ""
		if len(flags) > 0 {
			suffix = "  [" + strings.Join(flags, ",") + "]"
		}
		fmt.Printf("%3d  %-12s %6d  %-24s %s%s\n",
			i+1, w.HandleString(), w.PID, w.ProcessName, w.Title, suffix)
	}
	return nil
}

func applyAffinity(args []string, affinity shared.Affinity) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	w, err := a.resolveTarget(args)
	if err != nil {
		return err
	}

	op := "include"
	if affinity == shared.AffinityExcludeFromCapture {
		op = "exclude"
	}

	outcome, err := a.inj.ApplyAffinity(windows.HWND(w.Handle), affinity, autoUnloadFlag)
	if err != nil {
		a.record(w, op, false, err.Error())
		if hint := injector.KindOf(err).Hint(); hint != "" {
			logrus.Warnf("hint: %s", hint)
		}
		return err
	}
	a.record(w, op, true, "")

	if outcome.Verified {
		logrus.Infof("%q is now %s (verified)", w.Title, outcome.Affinity)
	} else {
		logrus.Infof("%q is now %s (assumed, no read-back API)", w.Title, outcome.Affinity)
	}
	return nil
}

func runExclude(args []string) error {
	return applyAffinity(args, shared.AffinityExcludeFromCapture)
}

func runInclude(args []string) error {
	return applyAffinity(args, shared.AffinityNone)
}

func runUnload(args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	w, err := a.resolveTarget(args)
	if err != nil {
		return err
	}
	if err := a.inj.UnloadPayload(windows.HWND(w.Handle)); err != nil {
		a.record(w, "unload", false, err.Error())
		return err
	}
	a.record(w, "unload", true, "")
	logrus.Infof("payload absent from %s", w.ProcessName)
	return nil
}

func runTopMost(args []string) error {
	mode := args[len(args)-1]
	if mode != "on" && mode != "off" {
		return fmt.Errorf("last argument must be on or off, got %q", mode)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	w, err := a.resolveTarget(args[:len(args)-1])
	if err != nil {
		return err
	}
	if err := winutil.SetTopMost(w.Handle, mode == "on"); err != nil {
		a.record(w, "topmost", false, err.Error())
		return err
	}
	a.record(w, "topmost", true, "mode="+mode)
	logrus.Infof("topmost %s for %q", mode, w.Title)
	return nil
}

func runHide(args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	w, err := a.resolveTarget(args)
	if err != nil {
		return err
	}
	if err := winutil.Hide(w.Handle); err != nil {
		a.record(w, "hide", false, err.Error())
		return err
	}
	a.record(w, "hide", true, "")
	if a.st != nil {
		err := a.st.SaveHiddenWindow(&store.HiddenWindow{
			Handle:      uint64(w.Handle),
			Title:       w.Title,
			ProcessName: w.ProcessName,
			PID:         w.PID,
		})
		if err != nil {
			logrus.WithError(err).Warn("hidden window not persisted")
		}
	}
	logrus.Infof("%q hidden; 'window-mod restore' brings it back", w.Title)
	return nil
}

func runShow(args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	// Hidden windows do not appear in the enumeration, so show targets the
	// persisted hidden list first, then falls back to the live enumeration.
	if a.st != nil {
		target := strings.ToLower(strings.Join(args, " "))
		hidden, _ := a.st.GetHiddenWindows()
		for _, h := range hidden {
			if fmt.Sprintf("0x%x", h.Handle) == target ||
				strings.Contains(strings.ToLower(h.Title), target) {
				if err := winutil.Show(uintptr(h.Handle)); err != nil {
					return err
				}
				a.st.DeleteHiddenWindow(h.Handle)
				logrus.Infof("%q visible again", h.Title)
				return nil
			}
		}
	}

	w, err := a.resolveTarget(args)
	if err != nil {
		return err
	}
	if err := winutil.Show(w.Handle); err != nil {
		a.record(w, "show", false, err.Error())
		return err
	}
	a.record(w, "show", true, "")
	logrus.Infof("%q visible again", w.Title)
	return nil
}

func runRestore(args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	if a.st == nil {
		return fmt.Errorf("restore needs the state database (remove --no-db)")
	}

	hidden, err := a.st.GetHiddenWindows()
	if err != nil {
		return err
	}
	if len(hidden) == 0 {
		logrus.Info("nothing to restore")
		return nil
	}

	all := len(args) == 0 || (len(args) == 1 && args[0] == "all")
	needle := strings.ToLower(strings.Join(args, " "))
	for _, h := range hidden {
		if !all && !strings.Contains(strings.ToLower(h.Title), needle) {
			continue
		}
		if !winutil.IsWindow(uintptr(h.Handle)) {
			a.st.DeleteHiddenWindow(h.Handle)
			logrus.Warnf("%q is gone, pruned from the hidden list", h.Title)
			continue
		}
		if err := winutil.Show(uintptr(h.Handle)); err != nil {
			logrus.WithError(err).Errorf("restore %q", h.Title)
			continue
		}
		a.st.DeleteHiddenWindow(h.Handle)
		logrus.Infof("%q visible again", h.Title)
	}
	return nil
}

func runHistory() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	if a.st == nil {
		return fmt.Errorf("history needs the state database (remove --no-db)")
	}

	records, err := a.st.RecentOperations(50)
	if err != nil {
		return err
	}
	for _, r := range records {
		result := "ok"
		if !r.Success {
			result = "failed: " + r.Detail
		}
		fmt.Printf("%s  %-8s %-24s %-40q %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.Operation, r.ProcessName, r.Title, result)
	}
	return nil
}

func runShell() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	c := console.New(a.inj, a.st, autoUnloadFlag)
	defer c.Close()
	return c.Run()
}
