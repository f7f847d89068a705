package accounts

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// PasswdSource is a default Source backed by reading /etc/passwd and
// /etc/group directly, mirroring getpwent/getgrent in
// original_source/nss2ldap.c without requiring cgo or nsswitch bindings.
// Each call to Users or Groups re-reads the files from the start, the
// same "restartable enumerator" contract as getpwent/endpwent.
type PasswdSource struct {
	PasswdPath string
	GroupPath  string
}

// NewPasswdSource returns a PasswdSource reading the standard
// /etc/passwd and /etc/group paths.
func NewPasswdSource() *PasswdSource {
	return &PasswdSource{PasswdPath: "/etc/passwd", GroupPath: "/etc/group"}
}

func (s *PasswdSource) Users() ([]User, error) {
	f, err := os.Open(s.PasswdPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var users []User
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) != 7 {
			continue
		}
		uid, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		gid, err := strconv.Atoi(fields[3])
		if err != nil {
			continue
		}
		users = append(users, User{
			Name:   fields[0],
			Passwd: fields[1],
			UID:    uid,
			GID:    gid,
			Gecos:  fields[4],
			Dir:    fields[5],
			Shell:  fields[6],
		})
	}
	return users, sc.Err()
}

func (s *PasswdSource) Groups() ([]Group, error) {
	f, err := os.Open(s.GroupPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var groups []Group
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) != 4 {
			continue
		}
		gid, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		var members []string
		if fields[3] != "" {
			members = strings.Split(fields[3], ",")
		}
		groups = append(groups, Group{
			Name:    fields[0],
			Passwd:  fields[1],
			GID:     gid,
			Members: members,
		})
	}
	return groups, sc.Err()
}

func (s *PasswdSource) UIDForName(name string) (int, bool) {
	users, err := s.Users()
	if err != nil {
		return 0, false
	}
	for _, u := range users {
		if u.Name == name {
			return u.UID, true
		}
	}
	return 0, false
}
