// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package permission decides whether an actor may perform a request.
//
// A Rule answers two questions. HasPermission is the coarse check made
// before any object is loaded; HasObjectPermission is the fine check made
// against a resolved object. Rules compose with Or and And, and the named
// policies at the bottom of this file are the compositions the API uses.
package permission

import (
	"net/http"

	"github.com/google/uuid"

	"yamdb/internal/models"
)

// Request is the input to every rule. A nil Actor is an anonymous caller.
type Request struct {
	Actor  *models.User
	Method string
}

// Safe reports whether the request method does not modify state.
func (r Request) Safe() bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// Anonymous reports whether the request carries no identity.
func (r Request) Anonymous() bool {
	return r.Actor == nil
}

// Owned is implemented by objects that have an author.
type Owned interface {
	OwnerID() uuid.UUID
}

// Rule is a permission predicate.
type Rule interface {
	HasPermission(req Request) bool
	HasObjectPermission(req Request, obj Owned) bool
}

// rule adapts a pair of functions to Rule. A nil object check allows.
type rule struct {
	coarse func(Request) bool
	fine   func(Request, Owned) bool
}

func (r rule) HasPermission(req Request) bool {
	if r.coarse == nil {
		return true
	}
	return r.coarse(req)
}

func (r rule) HasObjectPermission(req Request, obj Owned) bool {
	if r.fine == nil {
		return true
	}
	return r.fine(req, obj)
}

// ReadOnly allows safe methods only.
var ReadOnly Rule = rule{
	coarse: func(req Request) bool { return req.Safe() },
	fine:   func(req Request, _ Owned) bool { return req.Safe() },
}

// Authenticated allows any identified actor.
var Authenticated Rule = rule{
	coarse: func(req Request) bool { return !req.Anonymous() },
}

// AuthenticatedOrReadOnly allows safe methods to everyone and everything
// else to identified actors.
var AuthenticatedOrReadOnly Rule = rule{
	coarse: func(req Request) bool { return req.Safe() || !req.Anonymous() },
}

// Author allows safe methods on any object and writes on objects the
// actor owns.
var Author Rule = rule{
	fine: func(req Request, obj Owned) bool {
		if req.Safe() {
			return true
		}
		if req.Anonymous() || obj == nil {
			return false
		}
		return obj.OwnerID() == req.Actor.ID
	},
}

// Admin allows administrators, staff and superusers.
var Admin Rule = rule{
	coarse: isAdmin,
	fine:   func(req Request, _ Owned) bool { return isAdmin(req) },
}

// Moderator allows moderators.
var Moderator Rule = rule{
	coarse: isModerator,
	fine:   func(req Request, _ Owned) bool { return isModerator(req) },
}

func isAdmin(req Request) bool {
	if req.Anonymous() {
		return false
	}
	return req.Actor.IsStaff || req.Actor.IsSuperuser || req.Actor.IsAdmin()
}

func isModerator(req Request) bool {
	return !req.Anonymous() && req.Actor.IsModerator()
}

type anyOf []Rule

// Or allows a request when any rule allows it. For objects, a rule only
// counts if its coarse check also passes for the same request.
func Or(rules ...Rule) Rule { return anyOf(rules) }

func (rs anyOf) HasPermission(req Request) bool {
	for _, r := range rs {
		if r.HasPermission(req) {
			return true
		}
	}
	return false
}

func (rs anyOf) HasObjectPermission(req Request, obj Owned) bool {
	for _, r := range rs {
		if r.HasPermission(req) && r.HasObjectPermission(req, obj) {
			return true
		}
	}
	return false
}

type allOf []Rule

// And allows a request only when every rule allows it.
func And(rules ...Rule) Rule { return allOf(rules) }

func (rs allOf) HasPermission(req Request) bool {
	for _, r := range rs {
		if !r.HasPermission(req) {
			return false
		}
	}
	return true
}

func (rs allOf) HasObjectPermission(req Request, obj Owned) bool {
	for _, r := range rs {
		if !r.HasObjectPermission(req, obj) {
			return false
		}
	}
	return true
}

// Policies applied by the router.
var (
	// CatalogPolicy guards categories, genres and titles.
	CatalogPolicy = Or(Admin, ReadOnly)

	// FeedbackPolicy guards reviews and comments.
	FeedbackPolicy = And(AuthenticatedOrReadOnly, Or(Author, Admin, Moderator))

	// UserAdminPolicy guards user management.
	UserAdminPolicy = And(Authenticated, Admin)

	// SelfPolicy guards the current user's own profile.
	SelfPolicy = Authenticated
)

// DenialStatus returns the HTTP status for a refused request: 401 when
// the caller is anonymous, 403 otherwise.
func DenialStatus(req Request) int {
	if req.Anonymous() {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

// Denial messages.
const (
	NotAuthenticatedDetail = "Authentication credentials were not provided."
	PermissionDeniedDetail = "You do not have permission to perform this action."
)

// DenialDetail returns the error message matching DenialStatus.
func DenialDetail(req Request) string {
	if req.Anonymous() {
		return NotAuthenticatedDetail
	}
	return PermissionDeniedDetail
}
