package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockTimerFiresOnAdvance(t *testing.T) {
	m := NewMock(time.Unix(0, 0))
	timer := m.NewTimer(5 * time.Second)

	m.Advance(4 * time.Second)
	select {
	case <-timer.C():
		t.Fatal("timer fired early")
	default:
	}

	m.Advance(1 * time.Second)
	select {
	case <-timer.C():
	default:
		t.Fatal("timer did not fire after deadline")
	}
}

func TestMockTimerStopPreventsFire(t *testing.T) {
	m := NewMock(time.Unix(0, 0))
	timer := m.NewTimer(time.Second)
	ok := timer.Stop()
	require.True(t, ok)

	m.Advance(2 * time.Second)
	select {
	case <-timer.C():
		t.Fatal("stopped timer fired")
	default:
	}
}

func TestMockTickerFiresRepeatedly(t *testing.T) {
	m := NewMock(time.Unix(0, 0))
	ticker := m.NewTicker(time.Second)

	m.Advance(time.Second)
	select {
	case <-ticker.C():
	default:
		t.Fatal("ticker did not fire on first interval")
	}

	m.Advance(time.Second)
	select {
	case <-ticker.C():
	default:
		t.Fatal("ticker did not fire on second interval")
	}
}

func TestMockTickerStopPreventsFurtherFires(t *testing.T) {
	m := NewMock(time.Unix(0, 0))
	ticker := m.NewTicker(time.Second)
	m.Advance(time.Second)
	<-ticker.C()
	ticker.Stop()

	m.Advance(time.Second)
	select {
	case <-ticker.C():
		t.Fatal("stopped ticker fired again")
	default:
	}
}

func TestMockNowAdvances(t *testing.T) {
	start := time.Unix(100, 0)
	m := NewMock(start)
	assert.Equal(t, start, m.Now())
	m.Advance(10 * time.Second)
	assert.Equal(t, start.Add(10*time.Second), m.Now())
}
