package decorator

// underlineCodes maps document underline style names to markup codes.
// The single style has the empty code, written as "__".
var underlineCodes = map[string]string{
	"single":          "",
	"words":           "$",
	"double":          "=",
	"dotted":          ".",
	"thick":           "#",
	"dash":            "-",
	"dotDash":         ".-",
	"dotDotDash":      "..-",
	"wave":            "~",
	"dottedHeavy":     ".#",
	"dashedHeavy":     "-#",
	"dashDotHeavy":    ".-#",
	"dashDotDotHeavy": "..-#",
	"wavyHeavy":       "~#",
	"dashLong":        "-+",
	"wavyDouble":      "~=",
	"dashLongHeavy":   "-+#",
}

var underlineStyles = map[string]string{}

func init() {
	for style, code := range underlineCodes {
		underlineStyles[code] = style
	}
}

func underlineCode(style string) (string, bool) {
	code, ok := underlineCodes[style]
	return code, ok
}

func underlineStyle(code string) (string, bool) {
	style, ok := underlineStyles[code]
	return style, ok
}

// fontColors maps markup color names to RRGGBB values. Short aliases are
// accepted on input only; rendering always uses the long name.
var fontColors = map[string]string{
	"red":         "FF0000",
	"R":           "FF0000",
	"darkRed":     "7F0000",
	"DR":          "7F0000",
	"yellow":      "FFFF00",
	"Y":           "FFFF00",
	"darkYellow":  "7F7F00",
	"DY":          "7F7F00",
	"green":       "00FF00",
	"G":           "00FF00",
	"darkGreen":   "007F00",
	"DG":          "007F00",
	"cyan":        "00FFFF",
	"C":           "00FFFF",
	"darkCyan":    "007F7F",
	"DC":          "007F7F",
	"blue":        "0000FF",
	"B":           "0000FF",
	"darkBlue":    "00007F",
	"DB":          "00007F",
	"magenta":     "FF00FF",
	"M":           "FF00FF",
	"darkMagenta": "7F007F",
	"DM":          "7F007F",
	"lightGray":   "BFBFBF",
	"G1":          "BFBFBF",
	"darkGray":    "7F7F7F",
	"G2":          "7F7F7F",
	"black":       "000000",
	"BK":          "000000",
	"a000":        "FF5D5D",
	"a010":        "FF603C",
	"a020":        "FF6512",
	"a030":        "E07000",
	"a040":        "BC7A00",
	"a050":        "A08300",
	"a060":        "898900",
	"a070":        "758F00",
	"a080":        "619500",
	"a090":        "4E9B00",
	"a100":        "38A200",
	"a110":        "1FA900",
	"a120":        "00B200",
	"a130":        "00AF20",
	"a140":        "00AC3C",
	"a150":        "00AA55",
	"a160":        "00A76D",
	"a170":        "00A586",
	"a180":        "00A2A2",
	"a190":        "009FC3",
	"a200":        "009AED",
	"a210":        "1F8FFF",
	"a220":        "4385FF",
	"a230":        "5F7CFF",
	"a240":        "7676FF",
	"a250":        "8A70FF",
	"a260":        "9E6AFF",
	"a270":        "B164FF",
	"a280":        "C75DFF",
	"a290":        "E056FF",
	"a300":        "FF4DFF",
	"a310":        "FF50DF",
	"a320":        "FF53C3",
	"a330":        "FF55AA",
	"a340":        "FF5892",
	"a350":        "FF5A79",
}

// fontColorNames maps RRGGBB values back to markup names. Documents written
// by other producers round the dark tones differently (0x77 against 0x7F),
// so both spellings decode to the same name.
var fontColorNames = map[string]string{}

func init() {
	for name, hex := range fontColors {
		if len(name) <= 2 {
			continue // aliases never render
		}
		fontColorNames[hex] = name
	}
	fontColorNames["770000"] = "darkRed"
	fontColorNames["777700"] = "darkYellow"
	fontColorNames["007700"] = "darkGreen"
	fontColorNames["007777"] = "darkCyan"
	fontColorNames["000077"] = "darkBlue"
	fontColorNames["770077"] = "darkMagenta"
	fontColorNames["BBBBBB"] = "lightGray"
	fontColorNames["777777"] = "darkGray"
}

// colorToken renders a font color value as its markup token. White is the
// short form "^^"; known values use their name, anything else the raw hex.
func colorToken(hex string) string {
	if hex == "FFFFFF" {
		return "^^"
	}
	if name, ok := fontColorNames[hex]; ok {
		return "^" + name + "^"
	}
	return "^" + hex + "^"
}

// parseColor resolves a color token body to an RRGGBB value. The empty body
// means white, a three-digit hex doubles each digit, and names resolve
// through the color table. Unresolvable bodies are rejected so the token
// stays literal text.
func parseColor(body string) (string, bool) {
	if body == "" {
		return "FFFFFF", true
	}
	if len(body) == 3 && isUpperHex(body) {
		return body[0:1] + body[0:1] + body[1:2] + body[1:2] + body[2:3] + body[2:3], true
	}
	if hex, ok := fontColors[body]; ok {
		return hex, true
	}
	if len(body) == 6 && isUpperHex(body) {
		return body, true
	}
	return "", false
}

func isUpperHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

// highlightNames maps markup highlight names, including short aliases, to
// the document highlight value. Document values map to themselves, so the
// table also validates decoded highlights.
var highlightNames = map[string]string{
	"red":         "red",
	"R":           "red",
	"darkRed":     "darkRed",
	"DR":          "darkRed",
	"yellow":      "yellow",
	"Y":           "yellow",
	"darkYellow":  "darkYellow",
	"DY":          "darkYellow",
	"green":       "green",
	"G":           "green",
	"darkGreen":   "darkGreen",
	"DG":          "darkGreen",
	"cyan":        "cyan",
	"C":           "cyan",
	"darkCyan":    "darkCyan",
	"DC":          "darkCyan",
	"blue":        "blue",
	"B":           "blue",
	"darkBlue":    "darkBlue",
	"DB":          "darkBlue",
	"magenta":     "magenta",
	"M":           "magenta",
	"darkMagenta": "darkMagenta",
	"DM":          "darkMagenta",
	"lightGray":   "lightGray",
	"G1":          "lightGray",
	"darkGray":    "darkGray",
	"G2":          "darkGray",
	"black":       "black",
	"BK":          "black",
}

func parseHighlight(body string) (string, bool) {
	name, ok := highlightNames[body]
	return name, ok
}
