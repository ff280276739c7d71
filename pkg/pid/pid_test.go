package pid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func snapshot(r *Registry) map[[2]uint8]Gains {
	m := make(map[[2]uint8]Gains)
	r.Each(func(axis Axis, loop Loop, c *Controller) {
		m[[2]uint8{uint8(loop), uint8(axis)}] = c.Gains()
	})
	return m
}

func TestTargetSelectsExactlyOne(t *testing.T) {
	for _, loop := range []Loop{Attitude, Rate} {
		for axis := Roll; axis <= Yaw; axis++ {
			t.Run(loop.String()+"/"+axis.String(), func(t *testing.T) {
				r := NewRegistry()
				before := snapshot(r)
				c, err := r.Target(axis, loop)
				require.NoError(t, err)
				gains := Gains{Kp: 1.5, Ki: 0.25, Kd: 0.125}
				c.SetGains(gains)

				after := snapshot(r)
				for key, g := range after {
					if key == [2]uint8{uint8(loop), uint8(axis)} {
						require.Equal(t, gains, g)
					} else {
						require.Equal(t, before[key], g)
					}
				}
			})
		}
	}
}

func TestTargetInvalidAxis(t *testing.T) {
	r := NewRegistry()
	_, err := r.Target(3, Rate)
	require.Equal(t, ErrInvalidAxis, err)
	_, err = r.Target(Roll, 2)
	require.Equal(t, ErrInvalidAxis, err)
}

func TestEachOrder(t *testing.T) {
	var names []string
	NewRegistry().Each(func(axis Axis, loop Loop, c *Controller) {
		names = append(names, loop.String()+"/"+axis.String())
	})
	require.Equal(t, []string{
		"Attitude/Roll", "Attitude/Pitch", "Attitude/Yaw",
		"Rate/Roll", "Rate/Pitch", "Rate/Yaw",
	}, names)
}

func TestControllerUpdate(t *testing.T) {
	c := NewController(Gains{Kp: 2, Ki: 1, Kd: 0.5})
	// p=2*1, i=1*(1*0.5), d=0.5*(1-0)/0.5
	require.InDelta(t, 3.5, c.Update(1, 0.5), 1e-6)
	c.Reset()
	c.IntegralLimit = 0.1
	require.InDelta(t, 2+0.1+1, c.Update(1, 0.5), 1e-6)
	require.Equal(t, "Axis(7)", Axis(7).String())
	require.Equal(t, Rate, LoopOf(true))
}
