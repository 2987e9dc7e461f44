package mincrypt

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mitchellh/ioprogress"
	"github.com/sirupsen/logrus"

	"github.com/OhanaFS/mincrypt/asymmetric"
	"github.com/OhanaFS/mincrypt/header"
	"github.com/OhanaFS/mincrypt/keystream"
)

// Options specifies options for a Session.
type Options struct {
	// Encoding is the payload encoding of encrypted chunks. Defaults to
	// Binary.
	Encoding header.Encoding
	// SimpleMode disables the CRC check and the offset resynchronization on
	// decrypt. It can only be used with Binary encoding.
	SimpleMode bool
	// Logger receives debug traces. Defaults to the standard logrus logger.
	Logger *logrus.Entry
	// Progress is called after every chunk of a stream with the number of
	// input bytes processed and the total, or -1 when the total is unknown.
	// It is called with (-1, -1) once the stream is done.
	Progress ioprogress.DrawFunc
	// TraceIO logs every read, write and seek on files opened by the file
	// operations at trace level.
	TraceIO bool
}

// Session holds the keystream and key material of one caller. A configured
// Session may be used from several goroutines; the setters take a write lock.
type Session struct {
	mu       sync.RWMutex
	log      *logrus.Entry
	progress ioprogress.DrawFunc
	traceIO  bool

	schedule *keystream.Schedule
	shift    asymmetric.ShiftCipher
	encoding header.Encoding
	simple   bool
}

// NewSession creates a session with no keystream. SetPassword must be called
// before any cipher operation.
func NewSession(opts *Options) (*Session, error) {
	if opts == nil {
		opts = &Options{}
	}

	s := &Session{
		log:      opts.Logger,
		progress: opts.Progress,
		traceIO:  opts.TraceIO,
		encoding: header.Binary,
	}
	if s.log == nil {
		s.log = logrus.NewEntry(logrus.StandardLogger())
	}
	s.log = s.log.WithField("component", "mincrypt")

	if opts.Encoding != 0 {
		if err := s.SetEncoding(opts.Encoding); err != nil {
			return nil, err
		}
	}
	if err := s.SetSimpleMode(opts.SimpleMode); err != nil {
		return nil, err
	}
	return s, nil
}

// SetPassword derives a new keystream, replacing the previous one. A negative
// multiplier selects DefaultMultiplier.
func (s *Session) SetPassword(salt, password []byte, multiplier int) error {
	sched, err := keystream.Derive(salt, password, multiplier)
	if err != nil {
		if errors.Is(err, keystream.ErrTooLarge) {
			return fmt.Errorf("%w: %w", ErrResourceExhausted, err)
		}
		return fmt.Errorf("%w: %w", ErrParameter, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedule != nil {
		s.schedule.Wipe()
	}
	s.schedule = sched
	return nil
}

// SetEncoding selects the payload encoding of encrypted chunks.
func (s *Session) SetEncoding(enc header.Encoding) error {
	if !enc.Valid() {
		return fmt.Errorf("%w: encoding type %#x", ErrParameter, byte(enc))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.simple && enc != header.Binary {
		return fmt.Errorf("%w: simple mode requires binary encoding", ErrParameter)
	}
	s.encoding = enc
	return nil
}

// Encoding returns the payload encoding of encrypted chunks.
func (s *Session) Encoding() header.Encoding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encoding
}

// SetSimpleMode toggles simple mode.
func (s *Session) SetSimpleMode(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on && s.encoding != header.Binary {
		return fmt.Errorf("%w: simple mode requires binary encoding", ErrParameter)
	}
	s.simple = on
	return nil
}

// SimpleMode reports whether simple mode is on.
func (s *Session) SimpleMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.simple
}

// SetShiftCipher switches the session to asymmetric mode. A nil cipher
// switches it back to symmetric mode.
func (s *Session) SetShiftCipher(c asymmetric.ShiftCipher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shift = c
}

// LoadKeyFile reads a public or private key file and switches the session to
// asymmetric mode.
func (s *Session) LoadKeyFile(path string) error {
	km, err := asymmetric.LoadKeyFile(path)
	if err != nil {
		return classifyKeyError(err)
	}

	s.log.WithFields(logrus.Fields{
		"path":    path,
		"private": km.Private,
		"bits":    km.Bits,
	}).Debug("key file loaded")
	s.SetShiftCipher(km)
	return nil
}

// Mode returns the operating mode of the session.
func (s *Session) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.shift != nil {
		return Asymmetric
	}
	return Symmetric
}

// Ready reports whether a keystream has been derived.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule.Size() > 0
}

// Cleanup wipes the keystream and drops the key material. The session can
// be reused after another SetPassword.
func (s *Session) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedule != nil {
		s.schedule.Wipe()
		s.schedule = nil
	}
	s.shift = nil
}

func classifyKeyError(err error) error {
	switch {
	case errors.Is(err, asymmetric.ErrUnsupportedBits),
		errors.Is(err, asymmetric.ErrUnsupportedFile),
		errors.Is(err, asymmetric.ErrMalformedHeader),
		errors.Is(err, asymmetric.ErrMalformedBody),
		errors.Is(err, asymmetric.ErrMissingFooter),
		errors.Is(err, asymmetric.ErrWordCountInvalid),
		errors.Is(err, asymmetric.ErrInvalidPair):
		return fmt.Errorf("%w: %w", ErrFormat, err)
	case errors.Is(err, asymmetric.ErrIterationsLimit):
		return fmt.Errorf("%w: %w", ErrResourceExhausted, err)
	}
	return err
}
