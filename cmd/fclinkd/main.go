package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"
	"os"

	"github.com/golang/glog"

	"github.com/espfly/fclink/pkg/bridge/mqtt"
	"github.com/espfly/fclink/pkg/bridge/ws"
	"github.com/espfly/fclink/pkg/commander"
	"github.com/espfly/fclink/pkg/confcmd"
	"github.com/espfly/fclink/pkg/console"
	"github.com/espfly/fclink/pkg/env"
	fx "github.com/espfly/fclink/pkg/framework"
	"github.com/espfly/fclink/pkg/link"
	"github.com/espfly/fclink/pkg/pid"
	"github.com/espfly/fclink/pkg/power"
	"github.com/espfly/fclink/pkg/telemetry"
)

var (
	mqttURL    string
	wsAddress  string
	deviceName string

	simulate       = true
	simVoltage     = 4.0
	simCharger     bool
	batteryDevice  = "/sys/class/power_supply/BAT0"
	chargerDevice  = "/sys/class/power_supply/AC"
	reportInterval = telemetry.DefaultReportInterval
)

func init() {
	if val := os.Getenv("FCLINK_MQTT_URL"); val != "" {
		mqttURL = val
	}
	if val := os.Getenv("FCLINK_WS"); val != "" {
		wsAddress = val
	}
	if val := os.Getenv("FCLINK_NAME"); val != "" {
		deviceName = val
	}
	link.SetupFlags()
	power.SetupFlags()
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL, e.g. mqtt://localhost:1883/fclink/")
	flag.StringVar(&wsAddress, "ws", wsAddress, "Listen address of the websocket telemetry tap")
	flag.StringVar(&deviceName, "name", deviceName, "Device name, derived from machine id if empty")
	flag.DurationVar(&reportInterval, "report-interval", reportInterval, "Battery report interval")
	flag.BoolVar(&simulate, "sim", simulate, "Simulate the battery pack")
	flag.Float64Var(&simVoltage, "sim-voltage", simVoltage, "Initial voltage of the simulated battery")
	flag.BoolVar(&simCharger, "sim-charger", simCharger, "Plug the simulated charger at start")
	flag.StringVar(&batteryDevice, "battery", batteryDevice, "power_supply battery device when not simulated")
	flag.StringVar(&chargerDevice, "charger", chargerDevice, "power_supply charger device when not simulated")
}

func newSampler() power.Sampler {
	if !simulate {
		return &power.SysfsSupply{Battery: batteryDevice, Charger: chargerDevice}
	}
	pack := power.NewSimPack(float32(simVoltage))
	pack.SetCharger(simCharger)
	return power.Default().NewSampler(pack, pack)
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if deviceName == "" {
		deviceName = env.DeviceName()
	}
	glog.Infof("device %s", deviceName)

	runner := fx.NewRunner().HandleSignals()

	lnk := link.Default().MustNewLink()
	pids := pid.NewRegistry()
	con := console.New(lnk)
	cmdr := commander.New(lnk)

	pm := power.Default().NewManager(newSampler())
	pm.Gate = power.NewFlightEnable(true)
	pm.Cues = power.LogCues{}
	pm.Display = power.LogDisplay{}
	pm.Inactivity = cmdr
	pm.Shutdowner = &power.OnceShutdown{Fn: func(string) { runner.Stop() }}

	reporter := telemetry.NewReporter(pm, &telemetry.LinkSink{Sender: lnk})
	reporter.Interval = reportInterval
	reporter.PIDs = pids
	reporter.Console = con
	reporter.LinkStats = lnk.Stats

	proc := &confcmd.Processor{
		Targets:  pids,
		Reporter: reporter,
		Console:  con,
		Settings: &confcmd.Settings{},
	}
	lnk.HandleConfig(proc)

	telemetryLoop := fx.NewLoop("telemetry", fx.DefaultInterval).Add(lnk, cmdr, reporter)
	if mqttURL != "" {
		mirror, err := mqtt.NewMirror(mqttURL, deviceName)
		if err != nil {
			log.Fatalln(err)
		}
		mirror.Config = proc
		reporter.AddSinks(mirror)
		con.Sinks = append(con.Sinks, mirror)
		telemetryLoop.AddRunnable(mirror)
	}
	if wsAddress != "" {
		tap := ws.NewTap(wsAddress)
		reporter.AddSinks(tap)
		con.Sinks = append(con.Sinks, tap)
		telemetryLoop.AddRunnable(tap)
	}
	powerLoop := fx.NewLoop("power", power.Default().Interval).Add(pm)

	err := runner.Go(
		fx.NamedRun("power", powerLoop),
		fx.NamedRun("telemetry", telemetryLoop),
	).Wait()
	if err != nil {
		glog.Errorf("stopped: %v", err)
		glog.Flush()
		os.Exit(1)
	}
}
