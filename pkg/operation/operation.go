// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"

	"github.com/walteh/krep/pkg/command"
	"github.com/walteh/krep/pkg/config"
	"github.com/walteh/krep/pkg/log"
	"github.com/walteh/krep/pkg/pattern"
	"gitlab.com/tozd/go/errors"
)

// Pattern categories consulted by the mirror
const (
	ProjectCategories = "p,project"
	BranchCategories  = "b,branch"
	TagCategories     = "t,tag"
)

// 🎯 Operation is a unit of work run by a Runner
type Operation interface {
	Execute(ctx context.Context) error
}

// 🔧 Options contains the collaborators of an operation
type Options struct {
	// Config is the validated run configuration
	Config *config.Config
	// Store holds the project, branch and tag patterns
	Store *pattern.Store
	// Exec runs git
	Exec command.Executor
	// Reporter receives one result per project
	Reporter *log.Reporter
}

func (o Options) validate() error {
	if o.Config == nil {
		return errors.Errorf("config is required")
	}
	if o.Store == nil {
		return errors.Errorf("pattern store is required")
	}
	if o.Exec == nil {
		return errors.Errorf("executor is required")
	}
	if o.Reporter == nil {
		return errors.Errorf("reporter is required")
	}
	return nil
}

// 📦 Project is a mirror repository planned for import
type Project struct {
	Source   string // Name in the mirror and the manifest
	Target   string // Name on the remote
	GitDir   string // Bare repository on disk
	Remote   string // Push URL
	Revision string // Manifest revision, empty when scanned
}
