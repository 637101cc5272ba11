// Copyright 2025 Poiesic Systems
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

// Package session owns the state of one search-as-you-type box.
//
// A Controller debounces keystrokes before querying, so a burst of typing
// produces a single search for the final text. Each search it starts gets a
// generation number and its own context. Starting a newer search cancels the
// older context, and any response that arrives for a superseded generation is
// dropped, so results on screen always belong to the latest query.
//
// State moves idle → loading → success | error. Blank text returns to idle
// without querying. Hide and Show toggle the results panel independently of
// the search state.
//
// Consumers observe the controller with Subscribe. Snapshots are delivered
// in order, one per transition, from whichever goroutine caused it. A
// listener may call back into the controller.
//
// Example:
//
//	ctrl, err := session.NewController(searcher)
//	if err != nil {
//	    return err
//	}
//	defer ctrl.Close()
//
//	unsubscribe := ctrl.Subscribe(func(s session.Snapshot) {
//	    render(s)
//	})
//	defer unsubscribe()
//
//	ctrl.SetQuery("steel")
package session
