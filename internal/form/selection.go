package form

import "sync"

// Selection tracks the file currently picked in a host's file input. The
// bytes are read when File is called, so a submit always uploads the current
// pick even if the host reads files asynchronously.
type Selection struct {
	mu   sync.Mutex
	name string
	read func() ([]byte, error)
}

// Pick replaces the selection and returns a name-only File for the label.
func (s *Selection) Pick(name string, read func() ([]byte, error)) *File {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name, s.read = name, read
	return &File{Name: name}
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name, s.read = "", nil
}

// File reads the selected file. It returns nil, nil when nothing is picked.
func (s *Selection) File() (*File, error) {
	s.mu.Lock()
	name, read := s.name, s.read
	s.mu.Unlock()

	if read == nil {
		return nil, nil
	}
	data, err := read()
	if err != nil {
		return nil, err
	}
	return &File{Name: name, Data: data}, nil
}
