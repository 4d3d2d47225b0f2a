package main

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Hussein-Mazeh/shroombrella/internal/service"
)

var entryColumns = []string{"#", "Service", "Login"}

func newEntryTable() *widget.Table {
	return widget.NewTable(
		func() (int, int) { return 1, len(entryColumns) },
		func() fyne.CanvasObject {
			bg := canvas.NewRectangle(color.Transparent)
			hdr := canvas.NewText("", color.White)
			lbl := widget.NewLabel("")
			return container.NewStack(
				bg,
				container.NewPadded(hdr),
				container.NewPadded(lbl),
			)
		},
		func(widget.TableCellID, fyne.CanvasObject) {},
	)
}

// setTableWidths fits the columns to width: the index column is fixed and
// the rest share what is left.
func setTableWidths(t *widget.Table, width float32) {
	avail := width - 48
	if avail < 600 {
		avail = 600
	}
	idW := float32(70)
	rem := avail - idW
	t.SetColumnWidth(0, idW)
	t.SetColumnWidth(1, rem*0.55)
	t.SetColumnWidth(2, rem*0.45)
}

// refreshList shows entries below a header row. Row r > 0 is entries[r-1].
func refreshList(t *widget.Table, entries []service.Entry) {
	rows := len(entries) + 1
	t.Length = func() (int, int) { return rows, len(entryColumns) }

	t.UpdateCell = func(id widget.TableCellID, obj fyne.CanvasObject) {
		stack := obj.(*fyne.Container)
		bg := stack.Objects[0].(*canvas.Rectangle)
		hdr := stack.Objects[1].(*fyne.Container).Objects[0].(*canvas.Text)
		lbl := stack.Objects[2].(*fyne.Container).Objects[0].(*widget.Label)

		if id.Row == 0 {
			bg.FillColor = royalBlue
			bg.Show()

			hdr.TextSize = theme.TextSize()
			hdr.TextStyle = fyne.TextStyle{Bold: true}
			hdr.Color = color.White
			hdr.Text = entryColumns[id.Col]
			lbl.Hide()
			hdr.Show()
			hdr.Refresh()
			return
		}

		e := entries[id.Row-1]
		hdr.Hide()
		lbl.Show()

		if id.Row%2 == 0 {
			bg.FillColor = royalBlueLight
			bg.Show()
		} else {
			bg.FillColor = color.Transparent
			bg.Hide()
		}

		switch id.Col {
		case 0:
			lbl.SetText(fmt.Sprintf("%d", e.Index))
		case 1:
			lbl.SetText(e.Service)
		case 2:
			lbl.SetText(e.Login)
		}
	}

	t.SetRowHeight(0, 30)
	for r := 1; r < rows; r++ {
		t.SetRowHeight(r, 28)
	}
	t.UnselectAll()
	t.Refresh()
}
