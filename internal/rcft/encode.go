package rcft

import (
	"io"
	"strings"
)

// Encode renders the document in RCFT text form: the Classes context, the
// Types context and the dependencies relation, separated by blank lines.
func Encode(doc *Document) string {
	var b strings.Builder

	writeFormalHeader(&b, doc.Classes.Name)
	writeGrid(&b, doc.Classes)
	b.WriteString("\n")

	writeFormalHeader(&b, doc.Types.Name)
	writeTypes(&b, doc.Types)
	b.WriteString("\n")

	rel := doc.Dependencies
	b.WriteString("RelationalContext " + rel.Name + "\n")
	b.WriteString("source " + rel.Source + "\n")
	b.WriteString("target " + rel.Target + "\n")
	b.WriteString("scaling " + rel.Scaling + "\n")
	writeGrid(&b, &rel.FormalContext)

	return b.String()
}

// Write encodes the document to w.
func Write(w io.Writer, doc *Document) error {
	_, err := io.WriteString(w, Encode(doc))
	return err
}

func writeFormalHeader(b *strings.Builder, name string) {
	b.WriteString("FormalContext " + name + "\n")
}

func writeGrid(b *strings.Builder, ctx *FormalContext) {
	b.WriteString("| |")
	for _, attr := range ctx.Attributes {
		b.WriteString(" " + attr + " |")
	}
	b.WriteString("\n")

	for i, obj := range ctx.Objects {
		b.WriteString("| " + obj + " |")
		for j := range ctx.Attributes {
			if ctx.Has(i, j) {
				b.WriteString(" x |")
			} else {
				b.WriteString(" |")
			}
		}
		b.WriteString("\n")
	}
}

// writeTypes renders the Types context with its fixed two-column layout.
func writeTypes(b *strings.Builder, ctx *FormalContext) {
	b.WriteString("| | " + AttrIsPrimitive + " | " + AttrIsObject + " |\n")
	for i, typeName := range ctx.Objects {
		if ctx.Has(i, 0) {
			b.WriteString("| " + typeName + " | x |  |\n")
		} else {
			b.WriteString("| " + typeName + " |  | x |\n")
		}
	}
}
