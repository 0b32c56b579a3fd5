package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind  MsgKind
	data  any
	owner *Model
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSignedIn MsgKind = iota
	MsgDashboardLoaded
	MsgRowsLoaded
	MsgActionDone
	MsgProgressUpdate
	MsgNotify
	MsgRedirect
)

type signedIn struct {
	identity *models.Identity
	err      error
}

type dashboardLoaded struct {
	dashboard *tasks.Dashboard
	err       error
}

type rowsLoaded struct {
	screen string
	apply  func()
	err    error
}

type actionDone struct {
	screen string
	label  string
	ran    bool
	err    error
}

type notice struct {
	ok   bool
	text string
}

// signedInMsg is the constructor for [MsgSignedIn]
func signedInMsg(identity *models.Identity, err error) Msg {
	return Msg{kind: MsgSignedIn, data: signedIn{identity, err}}
}

// dashboardLoadedMsg is the constructor for [MsgDashboardLoaded]
func dashboardLoadedMsg(d *tasks.Dashboard, err error) Msg {
	return Msg{kind: MsgDashboardLoaded, data: dashboardLoaded{d, err}}
}

// rowsLoadedMsg is the constructor for [MsgRowsLoaded]. apply installs the rows into the screen and runs on the
// update loop.
func rowsLoadedMsg(screen string, apply func(), err error) Msg {
	return Msg{kind: MsgRowsLoaded, data: rowsLoaded{screen, apply, err}}
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(screen, label string, ran bool, err error) Msg {
	return Msg{kind: MsgActionDone, data: actionDone{screen, label, ran, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// notifyMsg is the constructor for [MsgNotify]
func notifyMsg(ok bool, text string) Msg {
	return Msg{kind: MsgNotify, data: notice{ok, text}}
}

// redirectMsg is the constructor for [MsgRedirect]
func redirectMsg(path string) Msg {
	return Msg{kind: MsgRedirect, data: path}
}
