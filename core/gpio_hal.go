package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the input-only GPIO surface the core needs at boot.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureInputPullDown configures a pin as a digital input with pull-down resistor
	ConfigureInputPullDown(pin GPIOPin) error

	// ReadPin reads the current pin state
	ReadPin(pin GPIOPin) bool
}

// Global singleton used by core code.
var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// ReadStrapMode samples the protocol strap once. The pin is pulled down, so
// an unconfigurable or absent driver reads low and selects LegacyText.
func ReadStrapMode(pin GPIOPin) ProtocolMode {
	if gpioDriver == nil {
		return LegacyText
	}
	if err := gpioDriver.ConfigureInputPullDown(pin); err != nil {
		DebugPrintln("strap pin: " + err.Error())
		return LegacyText
	}
	return SelectMode(gpioDriver.ReadPin(pin))
}
