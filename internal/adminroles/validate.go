package adminroles

import (
	"errors"
	"fmt"
	"reflect"
)

// Validate checks that the role tables cover every role and that the
// permission vector carries exactly one field per capability. It runs at
// package init; a role added without its matrix row or label fails here.
func Validate() error {
	return validateTables(Roles(), rolePermissions, roleLabels)
}

func validateTables(roles []Role, perms map[Role]PermissionVector, labels map[Role]string) error {
	var errs []error

	fields, err := vectorFields()
	if err != nil {
		errs = append(errs, err)
	}
	known := make(map[Capability]struct{}, len(fields))
	for _, c := range Capabilities() {
		known[c] = struct{}{}
		if _, ok := fields[c]; !ok {
			errs = append(errs, fmt.Errorf("adminroles: capability %s has no PermissionVector field", c))
		}
	}
	for c := range fields {
		if _, ok := known[c]; !ok {
			errs = append(errs, fmt.Errorf("adminroles: PermissionVector field %s is not a capability", c))
		}
	}

	seen := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		if _, dup := seen[r]; dup {
			errs = append(errs, fmt.Errorf("adminroles: role %s listed twice", r))
		}
		seen[r] = struct{}{}
		if _, ok := perms[r]; !ok {
			errs = append(errs, fmt.Errorf("adminroles: role %s has no permission row", r))
		}
		if labels[r] == "" {
			errs = append(errs, fmt.Errorf("adminroles: role %s has no label", r))
		}
	}
	for r := range perms {
		if _, ok := seen[r]; !ok {
			errs = append(errs, fmt.Errorf("adminroles: permission row for unlisted role %s", r))
		}
	}
	for r := range labels {
		if _, ok := seen[r]; !ok {
			errs = append(errs, fmt.Errorf("adminroles: label for unlisted role %s", r))
		}
	}

	for _, lr := range LegacyRoles() {
		if err := checkDerivation(lr, seen); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// vectorFields maps each PermissionVector json tag to its field index and
// confirms Has agrees with the field for that capability.
func vectorFields() (map[Capability]int, error) {
	t := reflect.TypeOf(PermissionVector{})
	fields := make(map[Capability]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type.Kind() != reflect.Bool {
			return nil, fmt.Errorf("adminroles: PermissionVector field %s is not a bool", f.Name)
		}
		fields[Capability(f.Tag.Get("json"))] = i
	}
	for c, idx := range fields {
		var probe PermissionVector
		reflect.ValueOf(&probe).Elem().Field(idx).SetBool(true)
		ok, err := safeHas(probe, c)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("adminroles: Has(%s) does not read its own field", c)
		}
	}
	return fields, nil
}

func safeHas(v PermissionVector, c Capability) (granted bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("adminroles: Has(%s): %v", c, rec)
		}
	}()
	return v.Has(c), nil
}

func checkDerivation(lr LegacyRole, roles map[Role]struct{}) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("adminroles: derive %s: %v", lr, rec)
		}
	}()
	role, ok := DeriveAdminRole(lr)
	if !ok {
		return nil
	}
	if _, known := roles[role]; !known {
		return fmt.Errorf("adminroles: legacy role %s derives unknown role %s", lr, role)
	}
	return nil
}
