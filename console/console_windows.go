//go:build windows

package console

import (
	"fmt"
	"os"
	"strings"

	linerpkg "github.com/peterh/liner"
	"github.com/sirupsen/logrus"
	"github.com/stevedomin/termtable"
	"golang.org/x/sys/windows"
	"golang.org/x/term"

	"github.com/ohto-ai/window-mod/injector"
	"github.com/ohto-ai/window-mod/shared"
	"github.com/ohto-ai/window-mod/store"
	"github.com/ohto-ai/window-mod/winutil"
)

const (
	colorReset  = "\033[0m"
	colorBlue   = "\033[34m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[91m"
)

var commandNames = []string{
	"list", "exclude", "include", "unload", "topmost",
	"hide", "show", "hidden", "restore", "history", "help", "exit", "quit",
}

// Console is the interactive shell. It keeps the last window listing so
// numeric targets stay stable between a `list` and the command that uses its
// indices.
type Console struct {
	line       *linerpkg.State
	inj        *injector.Injector
	st         *store.Store
	autoUnload bool
	lastList   []winutil.WindowInfo
	colors     bool
}

// New builds a console over an injector and an optional store (nil disables
// persistence of hidden windows and history).
func New(inj *injector.Injector, st *store.Store, autoUnload bool) *Console {
	line := linerpkg.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(prefix string) []string {
		var out []string
		for _, name := range commandNames {
			if strings.HasPrefix(name, strings.ToLower(prefix)) {
				out = append(out, name)
			}
		}
		return out
	})

	return &Console{
		line:       line,
		inj:        inj,
		st:         st,
		autoUnload: autoUnload,
		colors:     term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (c *Console) Close() {
	if c.line != nil {
		c.line.Close()
	}
}

func (c *Console) colorize(s, color string) string {
	if !c.colors {
		return s
	}
	return color + s + colorReset
}

// Run drives the REPL until exit or EOF.
func (c *Console) Run() error {
	fmt.Println("window-mod interactive shell. Type 'help' for commands, 'exit' to leave.")
	c.cmdList()

	for {
		input, err := c.line.Prompt("window-mod > ")
		if err == linerpkg.ErrPromptAborted {
			continue
		}
		if err != nil { // io.EOF or terminal failure
			fmt.Println()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		c.line.AppendHistory(input)

		parts := SplitCommand(input)
		if len(parts) == 0 {
			continue
		}
		command, args := parts[0], parts[1:]

		switch strings.ToLower(command) {
		case "exit", "quit":
			return nil
		case "help":
			c.cmdHelp()
		case "list":
			c.cmdList()
		case "exclude":
			c.cmdAffinity(args, shared.AffinityExcludeFromCapture)
		case "include":
			c.cmdAffinity(args, shared.AffinityNone)
		case "unload":
			c.cmdUnload(args)
		case "topmost":
			c.cmdTopMost(args)
		case "hide":
			c.cmdHide(args)
		case "show":
			c.cmdShow(args)
		case "hidden":
			c.cmdHidden()
		case "restore":
			c.cmdRestore(args)
		case "history":
			c.cmdHistory()
		default:
			fmt.Printf("%s unknown command %q, try 'help'\n", c.colorize("[!]", colorRed), command)
		}
	}
}

func (c *Console) cmdHelp() {
	fmt.Print(`Targets are an index from the last 'list', a 0xHANDLE, or a title substring.

  list                 refresh and show all visible top-level windows
  exclude <target>     hide the window from screen capture
  include <target>     make the window capturable again
  unload <target>      remove the payload DLL from the window's process
  topmost <target> on|off
  hide <target>        hide the window from the screen
  show <target>        reveal a window hidden with 'hide'
  hidden               show windows recorded as hidden
  restore [<target>|all]
  history              show recent operations
  exit                 leave the shell
`)
}

func (c *Console) resolve(args []string) (winutil.WindowInfo, bool) {
	if len(c.lastList) == 0 {
		c.refreshList()
	}
	target := ""
	if len(args) > 0 {
		target = strings.Join(args, " ")
	}
	w, err := ResolveTarget(c.lastList, target)
	if err != nil {
		fmt.Printf("%s %v\n", c.colorize("[!]", colorRed), err)
		return winutil.WindowInfo{}, false
	}
	return w, true
}

func (c *Console) refreshList() {
	list, err := winutil.EnumerateWindows(0)
	if err != nil {
		fmt.Printf("%s enumerate windows: %v\n", c.colorize("[!]", colorRed), err)
		return
	}
	c.lastList = list
}

func (c *Console) cmdList() {
	c.refreshList()
	if len(c.lastList) == 0 {
		fmt.Println(c.colorize("No visible titled windows found", colorYellow))
		return
	}

	t := termtable.NewTable(nil, &termtable.TableOptions{
		Padding:      2,
		UseSeparator: false,
	})
	t.SetHeader([]string{
		c.colorize("#", colorBlue),
		c.colorize("Handle", colorBlue),
		c.colorize("PID", colorBlue),
		c.colorize("Process", colorBlue),
		c.colorize("Flags", colorBlue),
		c.colorize("Title", colorBlue),
	})

	for i, w := range c.lastList {
		var flags []string
		if w.Excluded {
			flags = append(flags, "capture-excluded")
		}
		if w.TopMost {
			flags = append(flags, "topmost")
		}
		title := w.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		t.AddRow([]string{
			fmt.Sprintf("%d", i+1),
			w.HandleString(),
			fmt.Sprintf("%d", w.PID),
			w.ProcessName,
			strings.Join(flags, ","),
			title,
		})
	}
	fmt.Println(t.Render())
}

func (c *Console) record(w winutil.WindowInfo, op string, success bool, detail string) {
	if c.st == nil {
		return
	}
	err := c.st.RecordOperation(&store.OperationRecord{
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

func (c *Console) cmdAffinity(args []string, affinity shared.Affinity) {
	w, ok := c.resolve(args)
	if !ok {
		return
	}
	op := "include"
	if affinity == shared.AffinityExcludeFromCapture {
		op = "exclude"
	}

	outcome, err := c.inj.ApplyAffinity(windows.HWND(w.Handle), affinity, c.autoUnload)
	if err != nil {
		c.record(w, op, false, err.Error())
		c.printInjectError(err)
		return
	}
	c.record(w, op, true, "")

	status := "verified"
	if !outcome.Verified {
		status = "assumed (no read-back API on this system)"
	}
	fmt.Printf("%s %q is now %s, %s\n",
		c.colorize("[+]", colorGreen), w.Title, outcome.Affinity, status)
}

func (c *Console) cmdUnload(args []string) {
	w, ok := c.resolve(args)
	if !ok {
		return
	}
	if err := c.inj.UnloadPayload(windows.HWND(w.Handle)); err != nil {
		c.record(w, "unload", false, err.Error())
		c.printInjectError(err)
		return
	}
	c.record(w, "unload", true, "")
	fmt.Printf("%s payload absent from %s\n", c.colorize("[+]", colorGreen), w.ProcessName)
}

func (c *Console) cmdTopMost(args []string) {
	if len(args) < 2 || (args[len(args)-1] != "on" && args[len(args)-1] != "off") {
		fmt.Printf("%s usage: topmost <target> on|off\n", c.colorize("[!]", colorRed))
		return
	}
	enable := args[len(args)-1] == "on"
	w, ok := c.resolve(args[:len(args)-1])
	if !ok {
		return
	}
	if err := winutil.SetTopMost(w.Handle, enable); err != nil {
		c.record(w, "topmost", false, err.Error())
		fmt.Printf("%s %v\n", c.colorize("[!]", colorRed), err)
		return
	}
	c.record(w, "topmost", true, fmt.Sprintf("enable=%v", enable))
	fmt.Printf("%s topmost %s for %q\n", c.colorize("[+]", colorGreen),
		map[bool]string{true: "set", false: "cleared"}[enable], w.Title)
}

func (c *Console) cmdHide(args []string) {
	w, ok := c.resolve(args)
	if !ok {
		return
	}
	if err := winutil.Hide(w.Handle); err != nil {
		c.record(w, "hide", false, err.Error())
		fmt.Printf("%s %v\n", c.colorize("[!]", colorRed), err)
		return
	}
	c.record(w, "hide", true, "")
	if c.st != nil {
		err := c.st.SaveHiddenWindow(&store.HiddenWindow{
			Handle:      uint64(w.Handle),
			Title:       w.Title,
			ProcessName: w.ProcessName,
			PID:         w.PID,
		})
		if err != nil {
			logrus.WithError(err).Warn("hidden window not persisted")
		}
	}
	fmt.Printf("%s %q hidden; 'restore' brings it back\n", c.colorize("[+]", colorGreen), w.Title)
}

func (c *Console) cmdShow(args []string) {
	w, ok := c.resolve(args)
	if !ok {
		return
	}
	c.showWindow(w.Handle, w.Title)
}

func (c *Console) showWindow(handle uintptr, title string) {
	if err := winutil.Show(handle); err != nil {
		fmt.Printf("%s %v\n", c.colorize("[!]", colorRed), err)
		return
	}
	if c.st != nil {
		c.st.DeleteHiddenWindow(uint64(handle))
	}
	fmt.Printf("%s %q visible again\n", c.colorize("[+]", colorGreen), title)
}

func (c *Console) cmdHidden() {
	if c.st == nil {
		fmt.Println(c.colorize("Persistence is disabled", colorYellow))
		return
	}
	hidden, err := c.st.GetHiddenWindows()
	if err != nil {
		fmt.Printf("%s %v\n", c.colorize("[!]", colorRed), err)
		return
	}
	if len(hidden) == 0 {
		fmt.Println(c.colorize("No windows recorded as hidden", colorYellow))
		return
	}

	t := termtable.NewTable(nil, &termtable.TableOptions{Padding: 2, UseSeparator: false})
	t.SetHeader([]string{
		c.colorize("Handle", colorBlue),
		c.colorize("PID", colorBlue),
		c.colorize("Process", colorBlue),
		c.colorize("Hidden at", colorBlue),
		c.colorize("Alive", colorBlue),
		c.colorize("Title", colorBlue),
	})
	for _, h := range hidden {
		alive := "no"
		if winutil.IsWindow(uintptr(h.Handle)) {
			alive = "yes"
		}
		t.AddRow([]string{
			fmt.Sprintf("0x%X", h.Handle),
			fmt.Sprintf("%d", h.PID),
			h.ProcessName,
			h.HiddenAt.Format("2006-01-02 15:04:05"),
			alive,
			h.Title,
		})
	}
	fmt.Println(t.Render())
}

// cmdRestore re-shows hidden windows from the persisted list. Stale rows
// (handle no longer a window) are pruned rather than reported as failures.
func (c *Console) cmdRestore(args []string) {
	if c.st == nil {
		fmt.Println(c.colorize("Persistence is disabled", colorYellow))
		return
	}
	hidden, err := c.st.GetHiddenWindows()
	if err != nil {
		fmt.Printf("%s %v\n", c.colorize("[!]", colorRed), err)
		return
	}
	if len(hidden) == 0 {
		fmt.Println(c.colorize("Nothing to restore", colorYellow))
		return
	}

	all := len(args) == 0 || (len(args) == 1 && args[0] == "all")
	for _, h := range hidden {
		if !all && !strings.Contains(strings.ToLower(h.Title), strings.ToLower(strings.Join(args, " "))) {
			continue
		}
		if !winutil.IsWindow(uintptr(h.Handle)) {
			c.st.DeleteHiddenWindow(h.Handle)
			fmt.Printf("%s %q is gone, pruned\n", c.colorize("[~]", colorYellow), h.Title)
			continue
		}
		c.showWindow(uintptr(h.Handle), h.Title)
		c.record(winutil.WindowInfo{Handle: uintptr(h.Handle), Title: h.Title, ProcessName: h.ProcessName, PID: h.PID},
			"show", true, "restored")
	}
}

func (c *Console) cmdHistory() {
	if c.st == nil {
		fmt.Println(c.colorize("Persistence is disabled", colorYellow))
		return
	}
	records, err := c.st.RecentOperations(25)
	if err != nil {
		fmt.Printf("%s %v\n", c.colorize("[!]", colorRed), err)
		return
	}
	if len(records) == 0 {
		fmt.Println(c.colorize("No operations recorded yet", colorYellow))
		return
	}

	t := termtable.NewTable(nil, &termtable.TableOptions{Padding: 2, UseSeparator: false})
	t.SetHeader([]string{
		c.colorize("When", colorBlue),
		c.colorize("Op", colorBlue),
		c.colorize("Result", colorBlue),
		c.colorize("Process", colorBlue),
		c.colorize("Title", colorBlue),
	})
	for _, r := range records {
		result := c.colorize("ok", colorGreen)
		if !r.Success {
			result = c.colorize("failed", colorRed)
		}
		t.AddRow([]string{
			r.CreatedAt.Format("15:04:05"),
			r.Operation,
			result,
			r.ProcessName,
			r.Title,
		})
	}
	fmt.Println(t.Render())
}

func (c *Console) printInjectError(err error) {
	fmt.Printf("%s %v\n", c.colorize("[!]", colorRed), err)
	if hint := injector.KindOf(err).Hint(); hint != "" {
		fmt.Printf("%s hint: %s\n", c.colorize("[~]", colorYellow), hint)
	}
}
