// Package workforce describes what a worker can do and when: skills with
// proficiency levels, certifications, weekly availability windows and workload
// capacity, combined into an immutable CapabilityProfile.
//
// Profiles are snapshots owned by the workforce management system. The scheduler
// reads them and derives updated copies with WithWorkload; it never mutates them.
package workforce
