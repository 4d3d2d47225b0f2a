package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Hussein-Mazeh/shroombrella/auth"
	"github.com/Hussein-Mazeh/shroombrella/internal/bio/toggle"
	"github.com/Hussein-Mazeh/shroombrella/internal/config"
	"github.com/Hussein-Mazeh/shroombrella/internal/idle"
	"github.com/Hussein-Mazeh/shroombrella/internal/logger"
	"github.com/Hussein-Mazeh/shroombrella/internal/secret"
	"github.com/Hussein-Mazeh/shroombrella/internal/service"
	"github.com/Hussein-Mazeh/shroombrella/internal/vault"
	"github.com/Hussein-Mazeh/shroombrella/krypto"
	"github.com/Hussein-Mazeh/shroombrella/store"
)

const breachCheckTimeout = 5 * time.Second

// ui holds the window and the one session it may have open. Widget text is
// copied into secret buffers as soon as it is read and the entry cleared.
type ui struct {
	cfg  *config.Config
	log  *logger.Logger
	svc  *service.Service
	w    fyne.Window
	root *fyne.Container
	idle *idle.Lock

	sess *service.Session

	clipMu    sync.Mutex
	clipTimer *time.Timer
}

func (u *ui) setContent(obj fyne.CanvasObject) {
	u.root.Objects = []fyne.CanvasObject{obj}
	u.root.Refresh()
}

func (u *ui) showError(title string, err error) {
	msg := service.UserMessage(err)
	if msg == service.MsgUnexpected {
		u.log.Error().Err(err).Str("dialog", title).Msg("unexpected error")
		msg = fmt.Sprintf("%s (%v)", msg, err)
	}
	dialog.ShowInformation(title, msg, u.w)
}

// lock closes the open session, wiping everything it holds.
func (u *ui) lock() {
	u.idle.Stop()
	if u.sess != nil {
		u.sess.Close()
		u.sess = nil
	}
}

func (u *ui) autoLock() {
	if u.sess == nil {
		return
	}
	msg := fmt.Sprintf("No activity for %s; vault locked.", u.cfg.AutoLock)
	if u.sess.Dirty() {
		msg += " Unsaved changes were discarded."
	}
	u.showPicker()
	dialog.ShowInformation("Session Locked", msg, u.w)
}

func (u *ui) copyToClipboard(b []byte) {
	u.w.Clipboard().SetContent(string(b))

	u.clipMu.Lock()
	defer u.clipMu.Unlock()
	if u.clipTimer != nil {
		u.clipTimer.Stop()
		u.clipTimer = nil
	}
	if ttl := u.cfg.ClipboardTTL; ttl > 0 {
		u.clipTimer = time.AfterFunc(ttl, func() { fyne.Do(u.clearClipboard) })
	}
}

// clearClipboard empties the clipboard if a copy is still pending.
func (u *ui) clearClipboard() {
	u.clipMu.Lock()
	t := u.clipTimer
	u.clipTimer = nil
	u.clipMu.Unlock()

	if t == nil {
		return
	}
	t.Stop()
	u.w.Clipboard().SetContent("")
}

// checkNewMaster applies the configured policy. A breach lookup that cannot
// reach the service is logged and skipped.
func (u *ui) checkNewMaster(pw *secret.Buffer) error {
	opts := auth.DefaultValidateOptions()
	opts.MinZXCVBNScore = u.cfg.MinPasswordScore
	if err := auth.ValidateMasterPassword(pw.Bytes(), opts); err != nil {
		return err
	}
	if !u.cfg.BreachCheck {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), breachCheckTimeout)
	defer cancel()
	res, err := auth.CheckHIBP(ctx, pw.Bytes())
	if err != nil {
		u.log.Warn().Err(err).Msg("breach check unavailable")
		return nil
	}
	if res.Found {
		return fmt.Errorf("%w (seen %d times)", auth.ErrBreached, res.Count)
	}
	return nil
}

// showPicker locks any open session and lists the vaults in the directory.
func (u *ui) showPicker() {
	u.lock()

	paths := u.svc.Paths()
	files, err := paths.List()
	if err != nil {
		u.log.Warn().Err(err).Str("dir", paths.Dir).Msg("list vaults")
	}
	names := make([]string, 0, len(files))
	byName := make(map[string]string, len(files))
	for _, f := range files {
		n := store.NameFromPath(f)
		names = append(names, n)
		byName[n] = f
	}

	sel := widget.NewSelect(names, nil)
	sel.PlaceHolder = "Choose a vault"
	if len(names) > 0 {
		sel.SetSelected(names[0])
	}

	btnOpen := makePrimary(widget.NewButton("Open", func() {
		path, ok := byName[sel.Selected]
		if !ok {
			dialog.ShowInformation("Open Vault", "Choose a vault first.", u.w)
			return
		}
		v, err := u.svc.Load(path)
		if err != nil {
			u.showError("Open Vault", err)
			return
		}
		u.showLogin(v)
	}))
	if len(names) == 0 {
		btnOpen.Disable()
	}
	btnCreate := widget.NewButtonWithIcon("New Vault", theme.ContentAddIcon(), u.showCreate)

	subtitle := paths.Dir
	if len(names) == 0 {
		subtitle = "No vaults yet in " + paths.Dir
	}
	card := widget.NewCard("Vaults", subtitle, container.NewVBox(
		sel,
		container.NewHBox(btnCreate, layout.NewSpacer(), btnOpen),
	))
	u.setContent(container.NewCenter(container.NewPadded(card)))
}

func (u *ui) showCreate() {
	name := widget.NewEntry()
	name.SetPlaceHolder("personal")
	pass := widget.NewPasswordEntry()
	pass.SetPlaceHolder("Create master password")
	confirm := widget.NewPasswordEntry()
	confirm.SetPlaceHolder("Confirm master password")

	items := []*widget.FormItem{
		widget.NewFormItem("Name", name),
		widget.NewFormItem("Master Password", pass),
		widget.NewFormItem("Confirm Password", confirm),
	}
	d := dialog.NewForm("Create Vault", "Create", "Cancel", items, func(ok bool) {
		match := pass.Text == confirm.Text
		master := secret.FromString(pass.Text)
		pass.SetText("")
		confirm.SetText("")
		defer master.Destroy()
		if !ok {
			return
		}

		if !match {
			dialog.ShowInformation("Create Vault", "Passwords do not match.", u.w)
			return
		}
		if err := u.checkNewMaster(master); err != nil {
			dialog.ShowInformation("Create Vault", "Password does not meet policy requirements: "+err.Error(), u.w)
			return
		}
		v, err := u.svc.Create(strings.TrimSpace(name.Text), master)
		if err != nil {
			u.showError("Create Vault", err)
			return
		}
		u.showLogin(v)
	}, u.w)
	d.Resize(fyne.NewSize(460, 0))
	d.Show()
}

func (u *ui) showLogin(v *vault.Vault) {
	u.lock()

	pass := widget.NewPasswordEntry()
	pass.SetPlaceHolder("Enter master password")

	unlock := func() {
		master := secret.FromString(pass.Text)
		pass.SetText("")
		sess, err := u.svc.Open(v, master)
		master.Destroy()
		if err != nil {
			u.showError("Unlock", err)
			return
		}
		u.sess = sess
		u.idle.Reset()
		u.showVault()
	}
	pass.OnSubmitted = func(string) { unlock() }

	btnUnlock := makePrimary(widget.NewButton("Unlock", unlock))
	btnBack := widget.NewButton("Back", u.showPicker)

	created := v.File.Header.CreatedAt.Local().Format("2006-01-02")
	loginCard := widget.NewCard(
		v.Name,
		"Created "+created+". Enter the master password.",
		container.NewVBox(pass, container.NewHBox(btnBack, layout.NewSpacer(), btnUnlock)),
	)
	u.setContent(container.NewCenter(container.NewPadded(loginCard)))
	u.w.Canvas().Focus(pass)
}

func (u *ui) showVault() {
	sess := u.sess
	if sess == nil {
		u.showPicker()
		return
	}
	withIdleReset := u.idle.Wrap
	onChanged := func(string) { u.idle.Reset() }

	var entries []service.Entry
	selected := -1

	status := widget.NewLabel("")
	table := newEntryTable()
	table.OnSelected = func(id widget.TableCellID) {
		u.idle.Reset()
		if id.Row > 0 && id.Row <= len(entries) {
			selected = id.Row - 1
		} else {
			selected = -1
		}
	}

	updateStatus := func() {
		if sess.Dirty() {
			status.SetText(fmt.Sprintf("%s: %d entries, unsaved changes", sess.Name(), len(entries)))
		} else {
			status.SetText(fmt.Sprintf("%s: %d entries", sess.Name(), len(entries)))
		}
	}
	refresh := func() {
		es, err := sess.Entries()
		if err != nil {
			u.showError("Credentials", err)
			return
		}
		entries = es
		selected = -1
		refreshList(table, entries)
		updateStatus()
	}
	requireSelection := func(title string) bool {
		if selected < 0 || selected >= len(entries) {
			dialog.ShowInformation(title, "Select a credential in the list first.", u.w)
			return false
		}
		return true
	}

	// --- Toolbar ---
	btnSave := makePrimary(widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), withIdleReset(func() {
		if err := sess.Save(); err != nil {
			u.showError("Save", err)
			return
		}
		updateStatus()
		dialog.ShowInformation("Save", "Vault saved.", u.w)
	})))
	btnLock := widget.NewButton("Lock", withIdleReset(func() {
		if !sess.Dirty() {
			u.showPicker()
			return
		}
		dialog.NewConfirm("Lock", "Discard unsaved changes and lock the vault?", func(ok bool) {
			if ok {
				u.showPicker()
			}
		}, u.w).Show()
	}))
	toolbar := container.NewHBox(status, layout.NewSpacer(), btnSave, btnLock)

	// --- Credentials list ---
	tableScroll := container.NewVScroll(table)
	tableScroll.SetMinSize(fyne.NewSize(0, 320))
	setTableWidths(table, u.w.Canvas().Size().Width)

	btnReveal := widget.NewButtonWithIcon("Reveal", theme.VisibilityIcon(), withIdleReset(func() {
		if !requireSelection("Reveal") {
			return
		}
		pw, err := sess.Reveal(selected)
		if err != nil {
			u.showError("Reveal", err)
			return
		}
		pwdLbl := widget.NewLabel(string(pw.Bytes()))
		copyBtn := makePrimary(widget.NewButton("Copy", withIdleReset(func() {
			u.copyToClipboard(pw.Bytes())
		})))
		d := dialog.NewCustom(
			"Password", "Close",
			container.NewVBox(
				widget.NewLabel("Password:"),
				pwdLbl,
				container.NewHBox(layout.NewSpacer(), copyBtn),
			),
			u.w,
		)
		d.SetOnClosed(func() {
			pwdLbl.SetText("")
			pw.Destroy()
		})
		d.Show()
	}))
	btnCopy := widget.NewButtonWithIcon("Copy", theme.ContentCopyIcon(), withIdleReset(func() {
		if !requireSelection("Copy") {
			return
		}
		pw, err := sess.Reveal(selected)
		if err != nil {
			u.showError("Copy", err)
			return
		}
		u.copyToClipboard(pw.Bytes())
		pw.Destroy()
	}))
	btnEdit := widget.NewButtonWithIcon("Edit", theme.DocumentCreateIcon(), withIdleReset(func() {
		if !requireSelection("Edit") {
			return
		}
		u.showEdit(sess, selected, refresh)
	}))
	btnDelete := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), withIdleReset(func() {
		if !requireSelection("Delete") {
			return
		}
		idx := selected
		e := entries[idx]
		dialog.NewConfirm(
			"Delete",
			fmt.Sprintf("Delete %s / %s ?", e.Service, e.Login),
			func(ok bool) {
				if !ok {
					return
				}
				u.idle.Reset()
				if err := sess.Delete(idx); err != nil {
					u.showError("Delete", err)
					return
				}
				refresh()
			},
			u.w,
		).Show()
	}))

	listCard := sectionCard("Credentials", container.NewBorder(
		nil,
		container.NewHBox(layout.NewSpacer(), btnReveal, btnCopy, btnEdit, btnDelete),
		nil, nil,
		container.NewStack(tableScroll),
	))

	// --- Add credential (form) ---
	svcEntry := widget.NewEntry()
	svcEntry.SetPlaceHolder("example.com")
	svcEntry.OnChanged = onChanged
	loginEntry := widget.NewEntry()
	loginEntry.SetPlaceHolder("username")
	loginEntry.OnChanged = onChanged
	passEntry := widget.NewPasswordEntry()
	passEntry.SetPlaceHolder("password")
	passEntry.OnChanged = onChanged

	btnGenerate := widget.NewButtonWithIcon("Generate", theme.ViewRefreshIcon(), withIdleReset(func() {
		raw, err := krypto.GeneratePassword(krypto.DefaultPasswordLength, krypto.Alphanumeric)
		if err != nil {
			u.showError("Generate", err)
			return
		}
		passEntry.SetText(string(raw))
		secret.Wipe(raw)
	}))
	addForm := widget.NewForm(
		widget.NewFormItem("Service", svcEntry),
		widget.NewFormItem("Login", loginEntry),
		widget.NewFormItem("Password", container.NewBorder(nil, nil, nil, btnGenerate, passEntry)),
	)
	btnAdd := makePrimary(widget.NewButton("Add", withIdleReset(func() {
		d, err := sess.NewDraft()
		if err != nil {
			u.showError("Add", err)
			return
		}
		d.Service = strings.TrimSpace(svcEntry.Text)
		d.Login = strings.TrimSpace(loginEntry.Text)
		d.SetPassword(secret.FromString(passEntry.Text))
		passEntry.SetText("")
		if err := sess.Add(d); err != nil {
			d.Cancel()
			u.showError("Add", err)
			return
		}
		svcEntry.SetText("")
		loginEntry.SetText("")
		refresh()
	})))
	addCard := sectionCard(
		"Add Credential",
		container.NewVBox(addForm, container.NewHBox(layout.NewSpacer(), btnAdd)),
	)

	// --- Change master ---
	newP := widget.NewPasswordEntry()
	newP.SetPlaceHolder("New master")
	newP.OnChanged = onChanged
	confirmP := widget.NewPasswordEntry()
	confirmP.SetPlaceHolder("Confirm new master")
	confirmP.OnChanged = onChanged
	changeForm := widget.NewForm(
		widget.NewFormItem("New", newP),
		widget.NewFormItem("Confirm", confirmP),
	)
	btnChange := makePrimary(widget.NewButton("Change Master", withIdleReset(func() {
		match := newP.Text == confirmP.Text
		master := secret.FromString(newP.Text)
		defer master.Destroy()
		newP.SetText("")
		confirmP.SetText("")

		if !match {
			dialog.ShowInformation("Change Master", "New passwords do not match.", u.w)
			return
		}
		if err := u.checkNewMaster(master); err != nil {
			dialog.ShowInformation("Change Master", "Password does not meet policy requirements: "+err.Error(), u.w)
			return
		}
		if err := sess.ChangeMasterPassword(master); err != nil {
			u.showError("Change Master", err)
			return
		}
		updateStatus()
		dialog.ShowInformation("Change Master", "Master password changed and vault saved.", u.w)
	})))
	changeCard := sectionCard(
		"Change Master",
		container.NewVBox(changeForm, container.NewHBox(layout.NewSpacer(), btnChange)),
	)

	content := container.NewVBox(
		container.NewPadded(toolbar),
		widget.NewSeparator(),
		container.NewPadded(listCard),
		widget.NewSeparator(),
		container.NewPadded(addCard),
		widget.NewSeparator(),
		container.NewPadded(changeCard),
		widget.NewSeparator(),
		container.NewPadded(u.bioCard(sess.Path())),
	)
	u.setContent(container.NewPadded(container.NewVScroll(content)))
	refresh()
}

// showEdit opens an edit dialog over a draft of entry idx. Cancelling wipes
// the draft; an empty password field keeps the stored password.
func (u *ui) showEdit(sess *service.Session, idx int, done func()) {
	d, err := sess.EditDraft(idx)
	if err != nil {
		u.showError("Edit", err)
		return
	}

	svcEntry := widget.NewEntry()
	svcEntry.SetText(d.Service)
	loginEntry := widget.NewEntry()
	loginEntry.SetText(d.Login)
	passEntry := widget.NewPasswordEntry()
	passEntry.SetPlaceHolder("leave blank to keep")

	items := []*widget.FormItem{
		widget.NewFormItem("Service", svcEntry),
		widget.NewFormItem("Login", loginEntry),
		widget.NewFormItem("Password", passEntry),
	}
	dlg := dialog.NewForm("Edit Credential", "Update", "Cancel", items, func(ok bool) {
		u.idle.Reset()
		newPass := passEntry.Text
		passEntry.SetText("")
		if !ok {
			d.Cancel()
			return
		}

		d.Service = strings.TrimSpace(svcEntry.Text)
		d.Login = strings.TrimSpace(loginEntry.Text)
		if newPass != "" {
			d.SetPassword(secret.FromString(newPass))
		}
		if err := sess.Update(idx, d); err != nil {
			d.Cancel()
			u.showError("Edit", err)
			return
		}
		done()
	}, u.w)
	dlg.Resize(fyne.NewSize(460, 0))
	dlg.Show()
}

// bioCard shows and flips the Touch ID toggle for the vault file.
func (u *ui) bioCard(vaultPath string) fyne.CanvasObject {
	statusValue := widget.NewLabel("Checking status…")
	statusValue.Wrapping = fyne.TextWrapWord

	var refreshBioStatus func()
	flip := func(enable bool) {
		reason := "disable biometric unlock"
		if enable {
			reason = "enable biometric unlock"
		}
		err := toggle.Authenticate(reason)
		if err == nil {
			if enable {
				err = toggle.Enable(vaultPath)
			} else {
				err = toggle.Disable(vaultPath)
			}
		}
		switch {
		case errors.Is(err, toggle.ErrUnsupported):
			dialog.ShowInformation("Biometric Unlock", "Biometric unlock is only supported on macOS", u.w)
		case err != nil:
			dialog.ShowError(fmt.Errorf("biometric unlock: %w", err), u.w)
		}
		refreshBioStatus()
	}

	enableBioBtn := makePrimary(widget.NewButton("Enable", u.idle.Wrap(func() { flip(true) })))
	disableBioBtn := widget.NewButton("Disable", u.idle.Wrap(func() { flip(false) }))

	refreshBioStatus = func() {
		state, err := toggle.Status(vaultPath)
		switch {
		case errors.Is(err, toggle.ErrUnsupported):
			statusValue.SetText("Biometric unlock is not supported on this platform.")
			enableBioBtn.Disable()
			disableBioBtn.Disable()
		case err != nil:
			statusValue.SetText(fmt.Sprintf("Status error: %v", err))
			enableBioBtn.Disable()
			disableBioBtn.Disable()
		case state.Enabled:
			statusValue.SetText("Enabled since " + state.EnabledAt.Local().Format("2006-01-02"))
			enableBioBtn.Disable()
			disableBioBtn.Enable()
		default:
			statusValue.SetText("Disabled")
			enableBioBtn.Enable()
			disableBioBtn.Disable()
		}
		if !u.cfg.Biometric {
			statusValue.SetText(statusValue.Text + " (ignored: biometric is off in the config)")
		}
	}
	refreshBioStatus()

	return sectionCard(
		"Biometric Unlock",
		container.NewVBox(
			widget.NewForm(widget.NewFormItem("Status", statusValue)),
			container.NewHBox(layout.NewSpacer(), disableBioBtn, enableBioBtn),
		),
	)
}
