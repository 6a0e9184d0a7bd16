package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Seagate/cortx-posix-sub001/clock"
)

type SimulatedClockTest struct {
	suite.Suite
}

func TestSimulatedClockSuite(t *testing.T) {
	suite.Run(t, new(SimulatedClockTest))
}

func (t *SimulatedClockTest) TestNowReturnsStartTimeUntilAdvanced() {
	start := time.Unix(1000, 0)
	c := clock.NewSimulatedClock(start)
	t.True(c.Now().Equal(start))

	c.AdvanceTime(5 * time.Second)
	t.True(c.Now().Equal(start.Add(5 * time.Second)))
}

func (t *SimulatedClockTest) TestSetTimeOverridesDirectly() {
	c := clock.NewSimulatedClock(time.Unix(0, 0))
	target := time.Unix(5000, 0)
	c.SetTime(target)
	t.True(c.Now().Equal(target))
}

func (t *SimulatedClockTest) TestAfterFiresOnlyWhenAdvancedPastTarget() {
	c := clock.NewSimulatedClock(time.Unix(0, 0))
	ch := c.After(10 * time.Second)

	select {
	case <-ch:
		t.Fail("After must not fire before the simulated clock reaches the target time")
	default:
	}

	c.AdvanceTime(10 * time.Second)

	select {
	case fired := <-ch:
		t.True(fired.Equal(time.Unix(10, 0)))
	default:
		t.Fail("After must fire once the simulated clock reaches the target time")
	}
}

func (t *SimulatedClockTest) TestAfterWithNonPositiveDurationFiresImmediately() {
	c := clock.NewSimulatedClock(time.Unix(100, 0))
	ch := c.After(0)

	select {
	case fired := <-ch:
		t.True(fired.Equal(time.Unix(100, 0)))
	default:
		t.Fail("After(0) must fire immediately")
	}
}
