package minter

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateInitial(t *testing.T) {
	s := NewState(50)
	snap := s.Snapshot()
	assert.Equal(t, uint64(50), snap.Capacity)
	assert.False(t, snap.Connected())
	assert.False(t, snap.IsMining)
}

func TestStateObserversOnlyOnChange(t *testing.T) {
	s := NewState(50)
	var got []Snapshot
	s.Observe(func(snap Snapshot) { got = append(got, snap) })

	s.SetAccount("0x01")
	s.SetAccount("0x01")
	s.SetNetworkWarning(false)
	s.SetMinted(0)
	s.AddMinted(0)

	assert.Len(t, got, 1)
	assert.Equal(t, "0x01", got[0].Account)
}

func TestStateAddMintedConcurrent(t *testing.T) {
	s := NewState(50)
	s.SetMinted(10)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddMinted(1)
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(110), s.Snapshot().Minted)
}

func TestStateMiningFlag(t *testing.T) {
	s := NewState(50)
	assert.True(t, s.StartMining())
	assert.False(t, s.StartMining())
	assert.True(t, s.Snapshot().IsMining)

	s.StopMining()
	assert.False(t, s.Snapshot().IsMining)
	assert.True(t, s.StartMining())
}

func TestCounterText(t *testing.T) {
	assert.Equal(t, "12/50 Magi Titles remain! 🧙‍♂️", CounterText(12, 50))
	assert.Equal(t, "0/50 Magi Titles remain! 🧙‍♂️", CounterText(0, 50))
}

func TestAssetURL(t *testing.T) {
	url := AssetURL("https://testnets.opensea.io/", testContractAddr, big.NewInt(13))
	assert.Equal(t, "https://testnets.opensea.io/assets/0x14304944D6B151Ba54e5E1197d09B9c36d2beF57/13", url)
}

func TestMintedNotice(t *testing.T) {
	msg := MintedNotice("https://x/assets/0xabc/1")
	assert.Contains(t, msg, "Hey there! We've minted your NFT and sent it to your wallet.")
	assert.Contains(t, msg, "Here's the link: https://x/assets/0xabc/1")
}
