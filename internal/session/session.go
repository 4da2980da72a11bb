// Package session은 edgectl의 세션 쿠키를 실행 사이에 보존한다.
package session

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DirName  = ".fitedge"
	FileName = "session.yaml"
)

type Cookie struct {
	Name     string    `yaml:"name"`
	Value    string    `yaml:"value"`
	Path     string    `yaml:"path,omitempty"`
	Domain   string    `yaml:"domain,omitempty"`
	Expires  time.Time `yaml:"expires,omitempty"`
	HttpOnly bool      `yaml:"http_only,omitempty"`
	Secure   bool      `yaml:"secure,omitempty"`
}

type Session struct {
	BaseURL   string    `yaml:"base_url"`
	Email     string    `yaml:"email,omitempty"`
	Cookies   []Cookie  `yaml:"cookies,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(DirName, FileName)
	}
	return filepath.Join(home, DirName, FileName)
}

// Load는 세션 파일을 읽는다. 파일이 없으면 빈 세션을 돌려준다
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Session{}, nil
		}
		return nil, err
	}

	s := &Session{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	s.UpdatedAt = time.Now().UTC()
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (s *Session) Clear() {
	s.Email = ""
	s.Cookies = nil
}

func (s *Session) Cookie(name string) (Cookie, bool) {
	for _, cookie := range s.Cookies {
		if cookie.Name == name {
			return cookie, true
		}
	}
	return Cookie{}, false
}

func (s *Session) IsSignedIn() bool {
	_, access := s.Cookie("access_token")
	_, refresh := s.Cookie("refresh_token")
	return access || refresh
}
