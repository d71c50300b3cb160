package protocol

// Legacy smart-protocol responses.
const (
	RespError   = "ERR"
	RespUnknown = "UNKNOWN COMMAND"
)

// SubCommandPrefix introduces a two-byte command.
const SubCommandPrefix = '^'

// SmartCommand is one entry of the legacy command table.
type SmartCommand struct {
	Code     string // one byte, or '^' plus a sub-command byte
	Response string
	Help     string
}

// SmartCommands is the complete legacy command table. Responses are fixed
// strings; the device does not report live values over this protocol.
var SmartCommands = []SmartCommand{
	{"^A", "SMART-UPS 700", "model string"},
	{"^N", "ACK; ON", "turn on"},
	{"^Z", "CAPABILITIES_STRING", "capability string"},
	{"A", "OK; Light show started", "front panel test"},
	{"B", "27.87", "battery voltage"},
	{"C", "036.0", "internal temperature"},
	{"D", "!, then $", "runtime calibration"},
	{"E", "336", "automatic self-test interval"},
	{"F", "60.00", "line frequency"},
	{"G", "UNKNOWN", "cause of transfer"},
	{"K", "OK", "shutdown with grace period"},
	{"L", "118.3", "input line voltage"},
	{"M", "118.9", "maximum line voltage"},
	{"N", "118.9", "minimum line voltage"},
	{"O", "118.3", "output voltage"},
	{"P", "023.5", "power load percent"},
	{"Q", "08", "status flags"},
	{"R", "BYE", "turn dumb"},
	{"S", "OK", "soft shutdown"},
	{"U", "!, then $", "simulate power failure"},
	{"V", "GWD", "firmware revision"},
	{"W", "OK", "self-test"},
	{"X", "OK", "self-test results"},
	{"Y", "SM", "enter smart mode"},
	{"Z", "n/a", "shutdown immediately"},
	{"a", "PROTOCOL_INFO", "protocol info"},
	{"b", "50.9.D", "firmware revision"},
	{"c", "UPS_IDEN", "local identifier"},
	{"e", "00", "return threshold"},
	{"f", "099.0", "battery level"},
	{"g", "024", "nominal battery voltage"},
	{"h", "042.4", "ambient humidity"},
	{"i", "00", "dry contacts"},
	{"j", "0327", "estimated runtime"},
	{"k", "0", "alarm delay"},
	{"l", "103", "low transfer voltage"},
	{"m", "11/29/96", "manufacturing date"},
	{"n", "WS9643050926", "serial number"},
	{"o", "115", "on-battery voltage"},
	{"p", "020", "shutdown grace delay"},
	{"q", "02", "low battery warning"},
	{"r", "000", "wakeup delay"},
	{"s", "H", "sensitivity"},
	{"u", "132", "upper transfer voltage"},
	{"v", "4Kx", "measure-ups firmware"},
	{"t", "80.5", "measure-ups ambient temperature"},
	{"x", "11/29/96", "last battery change date"},
	{"y", "© APCC", "copyright notice"},
	{"z", "CLEAR", "reset to factory settings"},
	{"@", "OK", "shutdown and return"},
	{"~", "n/a", "register 1"},
	{"/", "n/a", "register 2"},
	{"\\", "n/a", "register 3"},
}

var (
	singleTable [128]string
	subTable    [128]string
)

func init() {
	for _, c := range SmartCommands {
		switch len(c.Code) {
		case 1:
			singleTable[c.Code[0]] = c.Response
		case 2:
			subTable[c.Code[1]] = c.Response
		}
	}
}

// ProcessCommand maps one command to its response text. Matching is
// case-sensitive and only the leading byte (two for '^' commands) is
// significant.
func ProcessCommand(buf []byte) string {
	if len(buf) == 0 {
		return RespError
	}
	c := buf[0]
	if c == SubCommandPrefix {
		if len(buf) < 2 || buf[1] >= 128 || subTable[buf[1]] == "" {
			return RespUnknown
		}
		return subTable[buf[1]]
	}
	if c >= 128 || singleTable[c] == "" {
		return RespUnknown
	}
	return singleTable[c]
}

// CommandLen returns how many bytes the command starting with c occupies.
func CommandLen(c byte) int {
	if c == SubCommandPrefix {
		return 2
	}
	return 1
}

// Respond appends the response to buf, terminated with CR LF, to dst.
func Respond(dst []byte, buf []byte) []byte {
	dst = append(dst, ProcessCommand(buf)...)
	return append(dst, LineEnding...)
}
