// Package mailbox is a thin wrapper around an IMAP client session. It
// carries no report logic; it only opens the mailbox, finds message UIDs,
// and hands body structures and part streams to the pipeline.
package mailbox

import (
	"crypto/tls"
	"fmt"
	"io"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"
)

// Config holds the connection settings for one mailbox session.
type Config struct {
	Server             string // host:port, e.g. "imap.example.com:993"
	Username           string
	Password           string
	InsecureSkipVerify bool
}

// Session is an authenticated IMAP session with one mailbox selected.
type Session struct {
	c   *client.Client
	log *zap.Logger
}

// Dial connects to the IMAP server over TLS and authenticates.
func Dial(cfg Config, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}

	c, err := client.DialTLS(cfg.Server, &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Server, err)
	}

	if err := c.Login(cfg.Username, cfg.Password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("authenticating as %s: %w", cfg.Username, err)
	}

	log.Info("mailbox session established", zap.String("server", cfg.Server))
	return &Session{c: c, log: log}, nil
}

// Select opens the named mailbox, optionally read-only.
func (s *Session) Select(name string, readOnly bool) (*imap.MailboxStatus, error) {
	status, err := s.c.Select(name, readOnly)
	if err != nil {
		return nil, fmt.Errorf("selecting %s: %w", name, err)
	}
	return status, nil
}

// Search returns the UIDs of candidate messages in the selected mailbox,
// restricted to unseen messages when unseenOnly is set.
func (s *Session) Search(unseenOnly bool) ([]uint32, error) {
	criteria := imap.NewSearchCriteria()
	if unseenOnly {
		criteria.WithoutFlags = []string{imap.SeenFlag}
	}

	uids, err := s.c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("searching mailbox: %w", err)
	}
	return uids, nil
}

// FetchStructure fetches the BODYSTRUCTURE of one message.
func (s *Session) FetchStructure(uid uint32) (*imap.BodyStructure, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.c.UidFetch(seqset, []imap.FetchItem{imap.FetchBodyStructure}, messages)
	}()

	msg := <-messages
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetching structure of %d: %w", uid, err)
	}
	if msg == nil || msg.BodyStructure == nil {
		return nil, fmt.Errorf("message %d has no body structure", uid)
	}
	return msg.BodyStructure, nil
}

// FetchPart fetches the raw byte stream of one body part. BODY.PEEK keeps
// read-only sessions from flagging messages as seen.
func (s *Session) FetchPart(uid uint32, path []int) (io.Reader, error) {
	section := &imap.BodySectionName{Peek: true}
	section.Path = path

	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.c.UidFetch(seqset, []imap.FetchItem{section.FetchItem()}, messages)
	}()

	msg := <-messages
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetching part %v of %d: %w", path, uid, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("message %d not returned by fetch", uid)
	}

	body := msg.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("message %d has no body section %v", uid, path)
	}
	return body, nil
}

// Close logs out and releases the connection.
func (s *Session) Close() error {
	if err := s.c.Logout(); err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	return nil
}
