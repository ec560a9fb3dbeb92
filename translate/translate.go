// Package translate localizes the user-facing text of the simulators.
package translate

import (
	"io"
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer *message.Printer

// Messages with a Brazilian Portuguese rendering. The simulators were
// written for Brazilian computer organization courses.
var ptBR = map[string]string{
	"invalid or corrupted file":   "arquivo inválido ou corrompido",
	"architecture unknown":        "arquitetura desconhecida",
	"'%v' is not a valid byte":    "'%v' não é um byte válido",
	"'%v' is not a number":        "'%v' não é um número",
	"'%v' is not a character":     "'%v' não é um caractere",
	"%v: %v":                      "%v: %v",
	"line %d %v":                  "linha %d %v",
	"line %d '%v' %v":             "linha %d '%v' %v",
	"macro %v line %v %v":         "macro %v linha %v %v",
	"label %v missing":            "rótulo %v ausente",
	"label duplicated":            "rótulo duplicado",
	".equ syntax":                 "sintaxe de .equ",
	".equ duplicated":             ".equ duplicado",
	".macro syntax":               "sintaxe de .macro",
	".macro in .macro prohibited": ".macro dentro de .macro proibido",
	".macro duplicated":           ".macro duplicada",
	".macro without .endm":        ".macro sem .endm",
	".endm without .macro":        ".endm sem .macro",
	".org syntax":                 "sintaxe de .org",
	"opcode invalid":              "instrução inválida",
	"register invalid":            "registrador inválido",
	"addressing mode invalid":     "modo de endereçamento inválido",
	"operand missing":             "operando ausente",
	"excessive arguments":         "argumentos em excesso",
	"value out of range":          "valor fora do intervalo",
	"program exceeds memory":      "programa excede a memória",
	"input file missing":          "arquivo de entrada ausente",
	"output file missing":         "arquivo de saída ausente",
	"command unknown":             "comando desconhecido",
	"cycles = %v\n":               "ciclos = %v\n",
	"accesses = %v\n":             "acessos = %v\n",

	"$(%v) is not a valid expression": "$(%v) não é uma expressão válida",
}

func init() {
	for key, msg := range ptBR {
		err := message.SetString(language.AmericanEnglish, key, key)
		if err == nil {
			err = message.SetString(language.BrazilianPortuguese, key, msg)
		}
		if err != nil {
			log.Printf("novir: catalog: %v", err)
		}
	}

	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("novir: locale: %v", err)
	}

	printer = newPrinter(locales)
}

// newPrinter returns the printer for the best catalog match of locales.
func newPrinter(locales []string) *message.Printer {
	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	return message.NewPrinter(message.MatchLanguage(locales...))
}

// NewPrinter returns a printer for a specific language, independent of the
// host locale.
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Fprintf translates an en-US format and writes it to w.
func Fprintf(w io.Writer, key message.Reference, args ...any) (n int, err error) {
	return printer.Fprintf(w, key, args...)
}
