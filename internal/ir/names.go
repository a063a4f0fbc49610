package ir

import (
	"fmt"
	"strings"
)

// MethodName formats "Lcls;.name:proto".
func MethodName(class, name, proto string) string {
	return class + "." + name + ":" + proto
}

// FieldName formats "Lcls;.name:type".
func FieldName(class, name, typ string) string {
	return class + "." + name + ":" + typ
}

// MemberName is a parsed "Lcls;.name:sig" member reference.
type MemberName struct {
	Class     string
	Name      string
	Signature string
}

// ParseMethodName splits "Lcom/Foo;.bar:(I)V".
func ParseMethodName(s string) (MemberName, error) {
	mn, err := parseMemberName(s)
	if err != nil {
		return MemberName{}, err
	}
	if !strings.HasPrefix(mn.Signature, "(") {
		return MemberName{}, fmt.Errorf("method %q: proto must start with '('", s)
	}
	if _, _, err := splitProto(mn.Signature); err != nil {
		return MemberName{}, fmt.Errorf("method %q: %w", s, err)
	}
	return mn, nil
}

// ParseFieldName splits "Lcom/Foo;.count:I".
func ParseFieldName(s string) (MemberName, error) {
	mn, err := parseMemberName(s)
	if err != nil {
		return MemberName{}, err
	}
	if err := ValidateDescriptor(mn.Signature); err != nil {
		return MemberName{}, fmt.Errorf("field %q: %w", s, err)
	}
	if mn.Signature == VoidDescriptor {
		return MemberName{}, fmt.Errorf("field %q: void field type", s)
	}
	return mn, nil
}

func parseMemberName(s string) (MemberName, error) {
	dot := strings.Index(s, ";.")
	if dot < 0 {
		return MemberName{}, fmt.Errorf("member %q: missing ';.' separator", s)
	}
	class := s[:dot+1]
	if err := ValidateDescriptor(class); err != nil {
		return MemberName{}, fmt.Errorf("member %q: %w", s, err)
	}
	rest := s[dot+2:]
	colon := strings.IndexByte(rest, ':')
	if colon <= 0 {
		return MemberName{}, fmt.Errorf("member %q: missing name or ':'", s)
	}
	return MemberName{Class: class, Name: rest[:colon], Signature: rest[colon+1:]}, nil
}

// ValidateDescriptor checks a single type descriptor.
func ValidateDescriptor(d string) error {
	n, err := descriptorLen(d)
	if err != nil {
		return err
	}
	if n != len(d) {
		return fmt.Errorf("descriptor %q: trailing characters", d)
	}
	return nil
}

// descriptorLen returns the length of the descriptor at the start of d.
func descriptorLen(d string) (int, error) {
	i := 0
	for i < len(d) && d[i] == '[' {
		i++
	}
	if i == len(d) {
		return 0, fmt.Errorf("descriptor %q: truncated", d)
	}
	switch d[i] {
	case 'Z', 'B', 'S', 'C', 'I', 'J', 'F', 'D':
		return i + 1, nil
	case 'V':
		if i > 0 {
			return 0, fmt.Errorf("descriptor %q: array of void", d)
		}
		return 1, nil
	case 'L':
		end := strings.IndexByte(d[i:], ';')
		if end <= 1 {
			return 0, fmt.Errorf("descriptor %q: unterminated class name", d)
		}
		return i + end + 1, nil
	default:
		return 0, fmt.Errorf("descriptor %q: bad type character %q", d, d[i])
	}
}

// splitProto splits "(args)ret" into argument and return descriptors.
func splitProto(p string) ([]string, string, error) {
	if !strings.HasPrefix(p, "(") {
		return nil, "", fmt.Errorf("proto %q: missing '('", p)
	}
	end := strings.IndexByte(p, ')')
	if end < 0 {
		return nil, "", fmt.Errorf("proto %q: missing ')'", p)
	}
	var args []string
	rest := p[1:end]
	for rest != "" {
		n, err := descriptorLen(rest)
		if err != nil {
			return nil, "", fmt.Errorf("proto %q: %w", p, err)
		}
		if rest[:n] == VoidDescriptor {
			return nil, "", fmt.Errorf("proto %q: void argument", p)
		}
		args = append(args, rest[:n])
		rest = rest[n:]
	}
	ret := p[end+1:]
	if err := ValidateDescriptor(ret); err != nil {
		return nil, "", fmt.Errorf("proto %q: %w", p, err)
	}
	return args, ret, nil
}
