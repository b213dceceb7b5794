package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Messages son los textos visibles para el usuario. Los placeholders van
// entre % (ej. %player%) y se reemplazan con Render.
type Messages struct {
	PanelTitle       string `yaml:"panel-title"`
	PanelDescription string `yaml:"panel-description"`
	ButtonPrimary    string `yaml:"button-label-primary"`
	ButtonAlternate  string `yaml:"button-label-alternate"`

	ModalTitlePrimary         string `yaml:"modal-title-primary"`
	ModalTitlePrimaryEdit     string `yaml:"modal-title-primary-edit"`
	ModalTitleAlternate       string `yaml:"modal-title-alternate"`
	ModalTitleAlternateEdit   string `yaml:"modal-title-alternate-edit"`
	ModalLabelPrimary         string `yaml:"modal-input-label-primary"`
	ModalLabelAlternate       string `yaml:"modal-input-label-alternate"`
	ModalPlaceholderPrimary   string `yaml:"modal-input-placeholder-primary"`
	ModalPlaceholderAlternate string `yaml:"modal-input-placeholder-alternate"`

	SuccessPrimary       string `yaml:"success-primary"`
	SuccessAlternate     string `yaml:"success-alternate"`
	UpdatedPrimary       string `yaml:"updated-primary"`
	UpdatedAlternate     string `yaml:"updated-alternate"`
	NameTaken            string `yaml:"name-already-taken"`
	InvalidPrimary       string `yaml:"invalid-name-primary"`
	InvalidAlternate     string `yaml:"invalid-name-alternate"`
	AccountAlreadyLinked string `yaml:"account-already-registered"`

	AdminAdded         string `yaml:"admin-added"`
	AdminAlreadyExists string `yaml:"admin-already-exists"`
	AdminRemoved       string `yaml:"admin-removed"`
	AdminNotFound      string `yaml:"admin-not-found"`
	AdminReloaded      string `yaml:"admin-reloaded"`
	ListEmpty          string `yaml:"list-empty"`
	ListHeader         string `yaml:"list-header"`
	ListMore           string `yaml:"list-more"`
	NoPermission       string `yaml:"no-permission"`
	GenericError       string `yaml:"generic-error"`

	NotWhitelisted string `yaml:"not-whitelisted"`

	ChatToGame     string `yaml:"chat-to-game"`
	ChatToDiscord  string `yaml:"chat-to-discord"`
	JoinToDiscord  string `yaml:"join-to-discord"`
	LeaveToDiscord string `yaml:"leave-to-discord"`
	DeathToDiscord string `yaml:"death-to-discord"`
	AdvancementMsg string `yaml:"advancement-to-discord"`
	ServerStart    string `yaml:"server-start"`
	ServerStop     string `yaml:"server-stop"`
	PresenceStatus string `yaml:"bot-status"`
}

func DefaultMessages() Messages {
	return Messages{
		PanelTitle:       "🎮 Server whitelist",
		PanelDescription: "Press a button below and enter your in-game name to join the whitelist.",
		ButtonPrimary:    "☕ Register (Java)",
		ButtonAlternate:  "🪨 Register (Bedrock)",

		ModalTitlePrimary:         "Whitelist registration (Java)",
		ModalTitlePrimaryEdit:     "Change whitelisted name (Java)",
		ModalTitleAlternate:       "Whitelist registration (Bedrock)",
		ModalTitleAlternateEdit:   "Change whitelisted gamertag (Bedrock)",
		ModalLabelPrimary:         "Minecraft ID",
		ModalLabelAlternate:       "Gamertag",
		ModalPlaceholderPrimary:   "e.g. Steve",
		ModalPlaceholderAlternate: "e.g. Steve1234",

		SuccessPrimary:       "✅ **%player%** is now whitelisted. You can join with the Java client.",
		SuccessAlternate:     "✅ **%player%** is now whitelisted. You can join with the Bedrock client.",
		UpdatedPrimary:       "✅ Your Minecraft ID is now **%player%**.",
		UpdatedAlternate:     "✅ Your gamertag is now **%player%**.",
		NameTaken:            "⚠️ **%player%** is already used by someone else.",
		InvalidPrimary:       "❌ Invalid Minecraft ID. Use 3-16 letters, digits or _.",
		InvalidAlternate:     "❌ Invalid gamertag. Use 3-16 letters, digits, spaces or _.",
		AccountAlreadyLinked: "❌ Your account already has a name in this edition.",

		AdminAdded:         "✅ Added **%player%** to the whitelist.",
		AdminAlreadyExists: "⚠️ **%player%** is already whitelisted.",
		AdminRemoved:       "✅ Removed **%player%** from the whitelist.",
		AdminNotFound:      "❌ **%player%** is not whitelisted.",
		AdminReloaded:      "🔄 Whitelist reloaded (%count% players).",
		ListEmpty:          "📋 The whitelist is empty.",
		ListHeader:         "📋 **Whitelist** (%count% players)",
		ListMore:           "... and %count% more",
		NoPermission:       "❌ You don't have permission to use this command.",
		GenericError:       "❌ Something went wrong.",

		NotWhitelisted: "You are not whitelisted.\nRegister on our Discord server first.",

		ChatToGame:     "[Discord] %user%: %message%",
		ChatToDiscord:  "**%player%**: %message%",
		JoinToDiscord:  "📥 **%player%** joined the server",
		LeaveToDiscord: "📤 **%player%** left the server",
		DeathToDiscord: "💀 %message%",
		AdvancementMsg: "🏆 **%player%** has made the advancement **%advancement%**",
		ServerStart:    "🟢 **Server started**",
		ServerStop:     "🔴 **Server stopped**",
		PresenceStatus: "Minecraft | %online%/%max%",
	}
}

// LoadMessages parte de los defaults y pisa lo que traiga el YAML. Un path
// vacío o inexistente deja los defaults.
func LoadMessages(path string) (Messages, error) {
	m := DefaultMessages()
	if path == "" {
		return m, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("read messages: %w", err)
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return DefaultMessages(), fmt.Errorf("parse messages %s: %w", path, err)
	}
	return m, nil
}

// Render reemplaza pares placeholder/valor: Render(tmpl, "player", "Steve").
func Render(tmpl string, kv ...string) string {
	if len(kv) < 2 {
		return tmpl
	}
	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "%"+kv[i]+"%", kv[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// MessageBook guarda los textos vigentes; Reload los cambia sin cortar
// lecturas en curso.
type MessageBook struct {
	path string
	cur  atomic.Pointer[Messages]
}

func NewMessageBook(path string) (*MessageBook, error) {
	b := &MessageBook{path: path}
	m, err := LoadMessages(path)
	b.cur.Store(&m)
	return b, err
}

// StaticMessages envuelve un set fijo (tests, defaults).
func StaticMessages(m Messages) *MessageBook {
	b := &MessageBook{}
	b.cur.Store(&m)
	return b
}

func (b *MessageBook) Get() Messages { return *b.cur.Load() }

// Reload relee el archivo; si falla se conservan los textos anteriores.
func (b *MessageBook) Reload() error {
	if b.path == "" {
		return nil
	}
	m, err := LoadMessages(b.path)
	if err != nil {
		return err
	}
	b.cur.Store(&m)
	return nil
}
