// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package superio

import (
	"testing"

	"github.com/bureau-foundation/hwmon/lib/ec"
	"github.com/bureau-foundation/hwmon/lib/portio"
	"github.com/bureau-foundation/hwmon/lib/smbios"
)

func TestSMFIHostAddress(t *testing.T) {
	tests := []struct {
		name    string
		chip    Chip
		address uint16
		high    byte
		want    uint32
	}{
		{"IT8792E", ChipIT8792E, 0x1234, 0, 0xFF341000},
		{"IT8790E low nibbles dropped", ChipIT8790E, 0xA5C3, 0, 0xFFC3A000},
		{"IT87952E high byte", ChipIT87952E, 0x1234, 0x05, 0xFD341000},
		{"IT87952E high byte masked", ChipIT87952E, 0x1234, 0xF3, 0xFF341000},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := SMFIHostAddress(test.chip, test.address, test.high); got != test.want {
				t.Errorf("SMFIHostAddress = 0x%08X, want 0x%08X", got, test.want)
			}
		})
	}
}

type memoryMapper struct {
	mapped []uint64
}

func (m *memoryMapper) MapPhysical(address uint64, size int) (*portio.Window, error) {
	m.mapped = append(m.mapped, address)
	return portio.NewWindow(address, make([]byte, size), nil), nil
}

func gigabyteBoard(processor string) smbios.Info {
	return smbios.Info{
		Board: &smbios.Board{
			ManufacturerName: "Gigabyte Technology Co., Ltd.",
			ProductName:      "X570 AORUS MASTER",
		},
		Processors: []smbios.Processor{{ManufacturerName: processor}},
	}
}

func gigabyteITE(smfiEnabled byte, ramBase uint16) *portio.SimulatedChip {
	chip := iteChip(0x8733, 0x0A40, 0x0A00)
	chip.SetDevice(ldnITESharedMemory, portio.RegisterLogicalActive, smfiEnabled)
	chip.SetDeviceWord(ldnITESharedMemory, registerSMFIRAMBase, ramBase)
	return chip
}

func TestDetectGigabyteSMFIController(t *testing.T) {
	simulator := portio.NewSimulator()
	simulator.AttachChip(secondary, gigabyteITE(0x01, 0x1234))
	mapper := &memoryMapper{}

	result := detect(t, newTestDetector(t, simulator, func(c *Config) {
		c.Board = gigabyteBoard("Intel(R) Corporation")
		c.Mapper = mapper
	}))

	if len(result.Devices) != 1 {
		t.Fatalf("got %d devices, report %q", len(result.Devices), result.Report)
	}
	controller, ok := result.Devices[0].Controller().(*ec.SMFIController)
	if !ok {
		t.Fatalf("controller = %T, want *ec.SMFIController", result.Devices[0].Controller())
	}
	if controller.Address() != 0xFF341000 {
		t.Errorf("host address = 0x%08X, want 0xFF341000", controller.Address())
	}

	if _, err := controller.Enable(false); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if len(mapper.mapped) != 1 || mapper.mapped[0] != 0xFF341000 {
		t.Errorf("mapped %v", mapper.mapped)
	}
	if err := result.Devices[0].Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if result.Devices[0].Controller() != nil {
		t.Error("controller still attached after Close")
	}
}

func TestDetectGigabyteECIOFallback(t *testing.T) {
	simulator := portio.NewSimulator()
	simulator.AttachChip(secondary, gigabyteITE(0x00, 0x1234))
	simulator.AttachEC(&portio.SimulatedEC{})

	result := detect(t, newTestDetector(t, simulator, func(c *Config) {
		c.Board = gigabyteBoard("Advanced Micro Devices, Inc.")
		c.Mapper = &memoryMapper{}
	}))

	if len(result.Devices) != 1 {
		t.Fatalf("got %d devices, report %q", len(result.Devices), result.Report)
	}
	controller := result.Devices[0].Controller()
	if controller == nil || controller.Kind() != "ecio" {
		t.Fatalf("controller = %v, want ecio", controller)
	}
}

func TestDetectGigabyteNoController(t *testing.T) {
	tests := []struct {
		name     string
		board    smbios.Info
		smfi     byte
		attachEC bool
	}{
		{"SMFI disabled on Intel", gigabyteBoard("Intel(R) Corporation"), 0x00, true},
		{"SMFI disabled, AMD, no EC", gigabyteBoard("Advanced Micro Devices, Inc."), 0x00, false},
		{"not Gigabyte", smbios.Info{Board: &smbios.Board{ManufacturerName: "ASUSTeK COMPUTER INC."}}, 0x01, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			simulator := portio.NewSimulator()
			simulator.AttachChip(secondary, gigabyteITE(test.smfi, 0x1234))
			if test.attachEC {
				simulator.AttachEC(&portio.SimulatedEC{})
			}

			result := detect(t, newTestDetector(t, simulator, func(c *Config) {
				c.Board = test.board
				c.Mapper = &memoryMapper{}
			}))

			if len(result.Devices) != 1 {
				t.Fatalf("ITE device missing without a controller: report %q", result.Report)
			}
			if controller := result.Devices[0].Controller(); controller != nil {
				t.Errorf("controller = %v, want none", controller.Kind())
			}
		})
	}
}

func TestResolveOnlyOnSecondaryPort(t *testing.T) {
	simulator := portio.NewSimulator()
	simulator.AttachChip(primary, gigabyteITE(0x01, 0x1234))

	result := detect(t, newTestDetector(t, simulator, func(c *Config) {
		c.Board = gigabyteBoard("Intel(R) Corporation")
		c.Mapper = &memoryMapper{}
	}))

	if len(result.Devices) != 1 {
		t.Fatalf("got %d devices", len(result.Devices))
	}
	if result.Devices[0].Controller() != nil {
		t.Error("controller resolved for a chip on 0x2E")
	}
}
