package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magicollection/magi/internal/minter"
)

type fakeDashboardController struct {
	snap      minter.Snapshot
	account   string
	mintErr   error
	connects  int
	mints     int
	initCalls int
	drops     int
}

func (f *fakeDashboardController) Init(context.Context) minter.Snapshot {
	f.initCalls++
	return f.snap
}

func (f *fakeDashboardController) RequestConnection(context.Context) minter.Session {
	f.connects++
	f.snap.Account = f.account
	return minter.Session{Address: f.account}
}

func (f *fakeDashboardController) Mint(context.Context) (*types.Receipt, error) {
	f.mints++
	if f.mintErr != nil {
		return nil, f.mintErr
	}
	f.snap.Minted++
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func (f *fakeDashboardController) Disconnect() {
	f.drops++
	f.snap.Account = ""
}

func (f *fakeDashboardController) Snapshot() minter.Snapshot { return f.snap }

func stubLinks(t *testing.T, openErr error) *[]string {
	t.Helper()
	var opened []string
	prevOpen, prevCopy := openURL, copyText
	openURL = func(url string) error {
		opened = append(opened, url)
		return openErr
	}
	copyText = func(string) error { return nil }
	t.Cleanup(func() { openURL, copyText = prevOpen, prevCopy })
	return &opened
}

func testInfo() DashboardInfo {
	return DashboardInfo{
		Title:         "The Magi Collection",
		Tagline:       "Discover your Magi Title today!",
		CollectionURL: "https://testnets.opensea.io/collection/epic-magi-titles-v2",
		TwitterHandle: "robdrosenberg",
		TwitterURL:    "https://twitter.com/robdrosenberg",
		Network:       "rinkeby",
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step feeds msg to the model and returns the next model and command.
func step(t *testing.T, m DashboardModel, msg tea.Msg) (DashboardModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	dm, ok := next.(DashboardModel)
	require.True(t, ok)
	return dm, cmd
}

func readyModel(t *testing.T, ctl *fakeDashboardController) DashboardModel {
	t.Helper()
	m := NewDashboardModel(context.Background(), ctl, testInfo(), minter.Snapshot{Capacity: 50})
	m, _ = step(t, m, m.initCmd()())
	return m
}

func TestDashboardLoadingThenConnectButton(t *testing.T) {
	ctl := &fakeDashboardController{snap: minter.Snapshot{Minted: 3, Capacity: 50}}
	m := NewDashboardModel(context.Background(), ctl, testInfo(), minter.Snapshot{Capacity: 50})
	assert.Contains(t, m.View(), "loading")

	m, _ = step(t, m, m.initCmd()())
	assert.Equal(t, 1, ctl.initCalls)
	view := m.View()
	assert.Contains(t, view, "Connect to Wallet")
	assert.Contains(t, view, "3/50 Magi Titles remain!")
	assert.Contains(t, view, minter.CollectionLinkText)
	assert.Contains(t, view, "@robdrosenberg")
	assert.NotContains(t, view, minter.NetworkWarningText)
}

func TestDashboardShowsNetworkWarning(t *testing.T) {
	ctl := &fakeDashboardController{snap: minter.Snapshot{Capacity: 50, NetworkWarning: true}}
	m := readyModel(t, ctl)
	assert.Contains(t, m.View(), minter.NetworkWarningText)
}

func TestDashboardConnectFlow(t *testing.T) {
	ctl := &fakeDashboardController{snap: minter.Snapshot{Capacity: 50}, account: "0xAbC0000000000000000000000000000000000001"}
	m := readyModel(t, ctl)

	m, cmd := step(t, m, keyRunes("c"))
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())

	assert.Equal(t, 1, ctl.connects)
	assert.True(t, m.Snapshot().Connected())
	view := m.View()
	assert.Contains(t, view, "Mint Magi Title")
	assert.Contains(t, view, "connected as")
}

func TestDashboardConnectRejectedFlashes(t *testing.T) {
	ctl := &fakeDashboardController{snap: minter.Snapshot{Capacity: 50}}
	m := readyModel(t, ctl)

	m, cmd := step(t, m, keyRunes("c"))
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())

	assert.False(t, m.Snapshot().Connected())
	assert.Contains(t, m.View(), "Not connected")
}

func TestDashboardMintIgnoredWhenDisconnected(t *testing.T) {
	ctl := &fakeDashboardController{snap: minter.Snapshot{Capacity: 50}}
	m := readyModel(t, ctl)

	_, cmd := step(t, m, keyRunes("m"))
	assert.Nil(t, cmd)
	assert.Zero(t, ctl.mints)
}

func TestDashboardMintFlow(t *testing.T) {
	ctl := &fakeDashboardController{snap: minter.Snapshot{Account: "0x01", Minted: 4, Capacity: 50}}
	m := readyModel(t, ctl)

	m, cmd := step(t, m, keyRunes("m"))
	require.NotNil(t, cmd)
	assert.True(t, m.Snapshot().IsMining)
	assert.Contains(t, m.View(), "Mining…")

	// A second press while mining does not start another mint.
	m2, cmd2 := step(t, m, keyRunes("m"))
	assert.Nil(t, cmd2)
	assert.Contains(t, m2.View(), "already in flight")

	m, _ = step(t, m, cmd())
	assert.Equal(t, 1, ctl.mints)
	assert.False(t, m.Snapshot().IsMining)
	assert.Contains(t, m.View(), "Mined!")
	assert.Contains(t, m.View(), "5/50 Magi Titles remain!")
}

func TestDashboardDisconnectFlow(t *testing.T) {
	ctl := &fakeDashboardController{snap: minter.Snapshot{Account: "0x01", Capacity: 50}}
	m := readyModel(t, ctl)
	assert.Contains(t, m.View(), "disconnect")

	m, cmd := step(t, m, keyRunes("d"))
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())

	assert.Equal(t, 1, ctl.drops)
	assert.False(t, m.Snapshot().Connected())
	view := m.View()
	assert.Contains(t, view, "Disconnected")
	assert.Contains(t, view, "Connect to Wallet")
}

func TestDashboardDisconnectIgnoredWhileMiningOrDisconnected(t *testing.T) {
	ctl := &fakeDashboardController{snap: minter.Snapshot{Capacity: 50}}
	m := readyModel(t, ctl)
	_, cmd := step(t, m, keyRunes("d"))
	assert.Nil(t, cmd)

	ctl.snap = minter.Snapshot{Account: "0x01", Capacity: 50, IsMining: true}
	m = readyModel(t, ctl)
	_, cmd = step(t, m, keyRunes("d"))
	assert.Nil(t, cmd)
	assert.Zero(t, ctl.drops)
}

func TestDashboardMintFailureResets(t *testing.T) {
	ctl := &fakeDashboardController{
		snap:    minter.Snapshot{Account: "0x01", Capacity: 50},
		mintErr: errors.New("user denied"),
	}
	m := readyModel(t, ctl)

	m, cmd := step(t, m, keyRunes("m"))
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())

	assert.False(t, m.Snapshot().IsMining)
	view := m.View()
	assert.Contains(t, view, "Mint did not complete")
	assert.Contains(t, view, "Mint Magi Title")
}

func TestDashboardMintInFlightFromController(t *testing.T) {
	ctl := &fakeDashboardController{
		snap:    minter.Snapshot{Account: "0x01", Capacity: 50},
		mintErr: minter.ErrMintInFlight,
	}
	m := readyModel(t, ctl)

	m, cmd := step(t, m, keyRunes("m"))
	m, _ = step(t, m, cmd())
	assert.Contains(t, m.View(), "already in flight")
}

func TestDashboardStateMsgRereadsController(t *testing.T) {
	ctl := &fakeDashboardController{snap: minter.Snapshot{Capacity: 50}}
	m := readyModel(t, ctl)

	ctl.snap.Minted = 9
	// Stale payload; the controller holds the truth.
	m, _ = step(t, m, StateMsg(minter.Snapshot{Minted: 2, Capacity: 50}))
	assert.Equal(t, uint64(9), m.Snapshot().Minted)
}

func TestDashboardNoticeBlocksUntilDismissed(t *testing.T) {
	opened := stubLinks(t, nil)
	ctl := &fakeDashboardController{snap: minter.Snapshot{Account: "0x01", Capacity: 50}}
	m := readyModel(t, ctl)

	url := "https://testnets.opensea.io/assets/0x14304944D6B151Ba54e5E1197d09B9c36d2beF57/7"
	m, _ = step(t, m, NoticeMsg(minter.MintedNotice(url)))
	assert.Equal(t, minter.MintedNotice(url), m.Notice())
	assert.Contains(t, m.View(), "Hey there!")

	// Keys other than dismiss and open are swallowed.
	m, cmd := step(t, m, keyRunes("m"))
	assert.Nil(t, cmd)
	assert.Zero(t, ctl.mints)

	m, _ = step(t, m, keyRunes("o"))
	assert.Equal(t, []string{url}, *opened)
	assert.NotEmpty(t, m.Notice())

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.Notice())
	assert.NotContains(t, m.View(), "Hey there!")
}

func TestDashboardNoticesQueue(t *testing.T) {
	ctl := &fakeDashboardController{snap: minter.Snapshot{Capacity: 50}}
	m := readyModel(t, ctl)

	m, _ = step(t, m, NoticeMsg("first"))
	m, _ = step(t, m, NoticeMsg("second"))
	assert.Equal(t, "first", m.Notice())
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "second", m.Notice())
}

func TestDashboardOpenLinks(t *testing.T) {
	opened := stubLinks(t, nil)
	m := readyModel(t, &fakeDashboardController{snap: minter.Snapshot{Capacity: 50}})

	m, _ = step(t, m, keyRunes("o"))
	m, _ = step(t, m, keyRunes("t"))
	assert.Equal(t, []string{testInfo().CollectionURL, testInfo().TwitterURL}, *opened)
	assert.Contains(t, m.View(), "Opening in browser")
}

func TestDashboardOpenFallsBackToClipboard(t *testing.T) {
	stubLinks(t, errors.New("no browser"))
	m := readyModel(t, &fakeDashboardController{snap: minter.Snapshot{Capacity: 50}})

	m, _ = step(t, m, keyRunes("o"))
	assert.Contains(t, m.View(), "Copied link to clipboard")
}

func TestDashboardQuit(t *testing.T) {
	m := readyModel(t, &fakeDashboardController{snap: minter.Snapshot{Capacity: 50}})
	m, cmd := step(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestNoticeLink(t *testing.T) {
	assert.Equal(t, "https://x.io/a/1", noticeLink("Here's the link: https://x.io/a/1"))
	assert.Equal(t, "https://b.io", noticeLink("see https://a.io and https://b.io now"))
	assert.Empty(t, noticeLink("no link here"))
}

func TestProgramNotifierQueuesBeforeAttach(t *testing.T) {
	var n ProgramNotifier
	n.Notify("hello")
	n.Observe(minter.Snapshot{Minted: 1})
	require.Len(t, n.pending, 2)
	assert.Equal(t, NoticeMsg("hello"), n.pending[0])
	assert.Equal(t, StateMsg(minter.Snapshot{Minted: 1}), n.pending[1])
}
