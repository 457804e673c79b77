package keyring

import (
	"errors"

	krfile "github.com/99designs/keyring"
)

// File keeps passwords in JOSE-encrypted files, for hosts without a
// desktop secret service (servers, containers, SSH sessions).
type File struct {
	ring krfile.Keyring
}

// OpenFile opens (creating if needed) the encrypted store in dir. password
// supplies the file passphrase; nil prompts on the terminal.
func OpenFile(dir string, password func(string) (string, error)) (*File, error) {
	prompt := krfile.PromptFunc(krfile.TerminalPrompt)
	if password != nil {
		prompt = krfile.PromptFunc(password)
	}

	ring, err := krfile.Open(krfile.Config{
		ServiceName:      "davsync",
		AllowedBackends:  []krfile.BackendType{krfile.FileBackend},
		FileDir:          dir,
		FilePasswordFunc: prompt,
	})
	if err != nil {
		return nil, &Error{Op: "open", Service: dir, Err: err}
	}
	return &File{ring: ring}, nil
}

// NewFileWithRing wraps an already opened ring
func NewFileWithRing(ring krfile.Keyring) *File {
	return &File{ring: ring}
}

// Get returns the stored password or ErrNotFound
func (f *File) Get(service, user string) (string, error) {
	item, err := f.ring.Get(itemKey(service, user))
	if err != nil {
		if errors.Is(err, krfile.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", &Error{Op: "get", Service: service, User: user, Err: err}
	}
	return string(item.Data), nil
}

// Set stores or replaces the password
func (f *File) Set(service, user, password string) error {
	err := f.ring.Set(krfile.Item{
		Key:   itemKey(service, user),
		Data:  []byte(password),
		Label: "davsync password for " + user,
	})
	if err != nil {
		return &Error{Op: "set", Service: service, User: user, Err: err}
	}
	return nil
}

func itemKey(service, user string) string {
	return service + ":" + user
}

var _ Store = (*File)(nil)
